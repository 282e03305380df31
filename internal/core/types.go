// Package core provides the business logic for the parts inventory.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"strconv"
)

// Field identifies one canonical column of a Record.
type Field string

const (
	FieldID       Field = "id"
	FieldName     Field = "name"
	FieldCategory Field = "category"
	FieldQuantity Field = "quantity"
	FieldDrawer   Field = "drawer"
	FieldValue    Field = "value"
	FieldPackage  Field = "package"
	FieldNotes    Field = "notes"
)

// Fields lists the canonical fields in export order.
var Fields = []Field{
	FieldID,
	FieldName,
	FieldCategory,
	FieldQuantity,
	FieldDrawer,
	FieldValue,
	FieldPackage,
	FieldNotes,
}

// Record is the canonical representation of one inventory entry.
// No field is ever absent: missing text is "" and missing quantity is 0.
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Drawer   string `json:"drawer"`
	Value    string `json:"value"`
	Package  string `json:"package"`
	Notes    string `json:"notes"`
}

// Get returns the string form of a field, as written to CSV.
func (r Record) Get(f Field) string {
	switch f {
	case FieldID:
		return r.ID
	case FieldName:
		return r.Name
	case FieldCategory:
		return r.Category
	case FieldQuantity:
		return strconv.Itoa(r.Quantity)
	case FieldDrawer:
		return r.Drawer
	case FieldValue:
		return r.Value
	case FieldPackage:
		return r.Package
	case FieldNotes:
		return r.Notes
	}
	return ""
}

// Format identifies the wire format of an import or export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ImportMode controls how imported records combine with the working set.
type ImportMode string

const (
	// ImportReplace discards the working set. This is the default.
	ImportReplace ImportMode = "replace"
	// ImportMerge upserts imported records by id, last write wins.
	ImportMerge ImportMode = "merge"
)

// ParseImportMode maps a user-supplied mode string to an ImportMode.
// Unknown or empty values select ImportReplace.
func ParseImportMode(s string) ImportMode {
	if ImportMode(s) == ImportMerge {
		return ImportMerge
	}
	return ImportReplace
}

// Persistence mirrors the record set to durable storage.
// Load returns ErrStateNotFound when nothing has been saved yet.
type Persistence interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	FileName string     `json:"fileName"`
	Format   Format     `json:"format"`
	Mode     ImportMode `json:"mode"`
	Imported int        `json:"imported"`
	Total    int        `json:"total"`
}

// Export is a rendered export artifact.
type Export struct {
	FileName    string
	ContentType string
	Body        []byte
	Records     int
}
