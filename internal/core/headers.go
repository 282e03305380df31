package core

// headers.go maps arbitrary, possibly localized column names and object keys
// onto the canonical Record fields.
//
// Names are compared after NormalizeHeader, so "Quantità", " QUANTITA " and
// "quantita" are the same header.

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// headerAliases lists accepted spellings per field, canonical name first.
// Order is priority: Resolve returns the first alias with a non-empty value.
var headerAliases = map[Field][]string{
	FieldID:       {"id", "uuid", "identificativo"},
	FieldName:     {"name", "nome", "componente", "articolo", "bezeichnung", "part"},
	FieldCategory: {"category", "categoria", "kategorie", "tipo", "type"},
	FieldQuantity: {"quantity", "qta", "qty", "quantità", "qt", "pezzi", "menge", "anzahl", "stock"},
	FieldDrawer:   {"drawer", "cassetto", "posizione", "pos", "ubicazione", "location", "fach", "lagerort"},
	FieldValue:    {"value", "valore", "wert"},
	FieldPackage:  {"package", "pkg", "formato", "footprint", "case", "gehäuse"},
	FieldNotes:    {"notes", "note", "descrizione", "description", "notizen", "bemerkung"},
}

// normalizedAliases holds headerAliases after NormalizeHeader, duplicates removed.
var normalizedAliases = buildNormalizedAliases()

func buildNormalizedAliases() map[Field][]string {
	out := make(map[Field][]string, len(headerAliases))
	for field, aliases := range headerAliases {
		seen := make(map[string]bool, len(aliases))
		for _, a := range aliases {
			key := NormalizeHeader(a)
			if seen[key] {
				continue
			}
			seen[key] = true
			out[field] = append(out[field], key)
		}
	}
	return out
}

// Aliases returns the normalized aliases for a field in priority order.
func Aliases(f Field) []string {
	return append([]string(nil), normalizedAliases[f]...)
}

// FoldDiacritics strips combining marks: "quantità" becomes "quantita".
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// NormalizeHeader prepares a header cell or object key for alias lookup:
// strips a BOM and Excel's ="..." wrapper, trims, lowercases, and folds diacritics.
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}

	return FoldDiacritics(strings.ToLower(s))
}

// HeaderIndex maps normalized header names to their positions in a row.
// Headers that normalize to the same name keep every position, left to right.
type HeaderIndex map[string][]int

// MakeHeaderIndex creates a HeaderIndex from a header row.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		idx[key] = append(idx[key], i)
	}
	return idx
}

// ColumnMap lists, per field, the candidate column positions in alias order.
type ColumnMap map[Field][]int

// Columns resolves every field's aliases against the header once, so rows
// can be mapped without repeating the lookup.
func (h HeaderIndex) Columns() ColumnMap {
	cols := make(ColumnMap, len(Fields))
	for _, f := range Fields {
		for _, alias := range normalizedAliases[f] {
			cols[f] = append(cols[f], h[alias]...)
		}
	}
	return cols
}

// Resolve returns the first non-empty cell among the field's candidate
// columns, or "" if none matches.
func (m ColumnMap) Resolve(row []string, f Field) string {
	for _, pos := range m[f] {
		if pos < len(row) && row[pos] != "" {
			return row[pos]
		}
	}
	return ""
}

// KeyIndex is the object-key counterpart of HeaderIndex.
type KeyIndex map[string][]RawValue

// MakeKeyIndex normalizes the keys of a raw record. Keys that collide after
// normalization keep all their values, in sorted key order so lookups
// resolve the same way on every run.
func MakeKeyIndex(rec RawRecord) KeyIndex {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	idx := make(KeyIndex, len(rec))
	for _, k := range keys {
		nk := NormalizeHeader(k)
		idx[nk] = append(idx[nk], rec[k])
	}
	return idx
}

// Resolve returns the first present, non-empty value among the field's
// aliases. The zero RawValue means nothing matched.
func (k KeyIndex) Resolve(f Field) RawValue {
	for _, alias := range normalizedAliases[f] {
		for _, v := range k[alias] {
			if v.String() != "" {
				return v
			}
		}
	}
	return RawValue{}
}
