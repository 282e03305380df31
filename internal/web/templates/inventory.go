// Package templates renders the inventory HTML views as templ components.
//
// The markup lives in inventory.templ; run `templ generate` after editing it.
package templates

import (
	"net/url"
	"strconv"

	"github.com/JonMunkholm/partsbin/internal/core"
)

// PageData is everything the inventory page shows.
type PageData struct {
	Query        core.ViewQuery
	View         core.ViewResult
	Vocabularies []core.Vocabulary
	Edit         *core.RecordInput // nil hides the edit form
	Notice       string
}

var tableHeadings = []string{"Nome", "Categoria", "Q.tà", "Cassetto", "Valore", "Formato", "Note", ""}

// editField is one text input of the edit form.
type editField struct {
	Name     string
	Label    string
	Value    string
	Required bool
}

func editFields(in core.RecordInput) []editField {
	return []editField{
		{Name: "name", Label: "Nome", Value: in.Name, Required: true},
		{Name: "category", Label: "Categoria", Value: in.Category},
		{Name: "quantity", Label: "Quantità", Value: in.Quantity},
		{Name: "drawer", Label: "Cassetto", Value: in.Drawer},
		{Name: "value", Label: "Valore", Value: in.Value},
		{Name: "package", Label: "Formato", Value: in.Package},
	}
}

func editTitle(in core.RecordInput) string {
	if in.ID == "" {
		return "Nuovo componente"
	}
	return "Modifica componente"
}

func exportJSONPath(vocab string) string {
	return "/api/export/json?vocab=" + url.QueryEscape(vocab)
}

func editPath(id string) string {
	return "/?edit=" + url.QueryEscape(id)
}

func deletePath(id string) string {
	return "/api/parts/" + url.PathEscape(id) + "/delete"
}

// ImportSummary renders the outcome of a form import.
func ImportSummary(res core.ImportResult) string {
	return "Importati " + strconv.Itoa(res.Imported) + " elementi da " + res.FileName +
		" (" + string(res.Format) + ", " + string(res.Mode) + "); totale " + strconv.Itoa(res.Total)
}
