package core

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// LowStockThreshold is the quantity at or below which a part counts as low.
const LowStockThreshold = 5

// ViewQuery filters the displayed record set.
type ViewQuery struct {
	Search   string `json:"q"`
	LowStock bool   `json:"low"`
}

// Totals summarizes a view. Items counts the whole set, Shown and Quantity
// count only the filtered rows.
type Totals struct {
	Items    int `json:"items"`
	Shown    int `json:"shown"`
	Quantity int `json:"quantity"`
}

// ViewResult is a filtered, sorted copy of the record set.
type ViewResult struct {
	Records []Record `json:"records"`
	Totals  Totals   `json:"totals"`
}

// IsLowStock reports whether r is at or below LowStockThreshold.
func IsLowStock(r Record) bool {
	return r.Quantity <= LowStockThreshold
}

// searchFields are matched by the free-text search.
var searchFields = []Field{FieldName, FieldCategory, FieldDrawer, FieldValue, FieldPackage, FieldNotes}

// Matches reports whether r passes q.
func (q ViewQuery) Matches(r Record) bool {
	if q.LowStock && !IsLowStock(r) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	for _, f := range searchFields {
		if strings.Contains(strings.ToLower(r.Get(f)), term) {
			return true
		}
	}
	return false
}

// View filters records by q and sorts them by drawer, then name, using
// locale-aware case-insensitive collation. The input is not modified.
func View(records []Record, q ViewQuery) ViewResult {
	out := make([]Record, 0, len(records))
	qty := 0
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
			qty += r.Quantity
		}
	}

	// Collators keep internal buffers, so each call gets its own.
	col := collate.New(language.Italian, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if c := col.CompareString(out[i].Drawer, out[j].Drawer); c != 0 {
			return c < 0
		}
		return col.CompareString(out[i].Name, out[j].Name) < 0
	})

	return ViewResult{
		Records: out,
		Totals: Totals{
			Items:    len(records),
			Shown:    len(out),
			Quantity: qty,
		},
	}
}
