package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidJSON wraps a JSON syntax error in an imported file.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrJSONNotArray is returned when the top-level JSON value is not an
	// array of objects. Nothing is imported in that case.
	ErrJSONNotArray = errors.New("json must be an array of objects")
)

// NormalizeRows builds records from parsed tabular rows. Row 0 is the
// header; blank rows are skipped. Missing columns produce empty fields.
func NormalizeRows(rows [][]string) []Record {
	if len(rows) == 0 {
		return []Record{}
	}

	cols := MakeHeaderIndex(rows[0]).Columns()

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if IsBlankRow(row) {
			continue
		}
		records = append(records, Record{
			ID:       CoerceID(cols.Resolve(row, FieldID)),
			Name:     cols.Resolve(row, FieldName),
			Category: cols.Resolve(row, FieldCategory),
			Quantity: CoerceQuantity(cols.Resolve(row, FieldQuantity)),
			Drawer:   cols.Resolve(row, FieldDrawer),
			Value:    cols.Resolve(row, FieldValue),
			Package:  cols.Resolve(row, FieldPackage),
			Notes:    cols.Resolve(row, FieldNotes),
		})
	}
	return records
}

// NormalizeRaw maps one raw object onto a canonical record.
func NormalizeRaw(rec RawRecord) Record {
	keys := MakeKeyIndex(rec)
	return Record{
		ID:       CoerceID(CoerceText(keys.Resolve(FieldID))),
		Name:     CoerceText(keys.Resolve(FieldName)),
		Category: CoerceText(keys.Resolve(FieldCategory)),
		Quantity: CoerceQuantity(CoerceText(keys.Resolve(FieldQuantity))),
		Drawer:   CoerceText(keys.Resolve(FieldDrawer)),
		Value:    CoerceText(keys.Resolve(FieldValue)),
		Package:  CoerceText(keys.Resolve(FieldPackage)),
		Notes:    CoerceText(keys.Resolve(FieldNotes)),
	}
}

// NormalizeJSON decodes a JSON array of objects into records. Any other
// shape is rejected as a whole; there is no partial result.
func NormalizeJSON(data []byte) ([]Record, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrJSONNotArray
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if top == nil {
		// literal null
		return nil, ErrJSONNotArray
	}

	records := make([]Record, 0, len(top))
	for i, elem := range top {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrJSONNotArray, i)
		}

		var raw RawRecord
		if err := json.Unmarshal(elem, &raw); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidJSON, i, err)
		}
		records = append(records, NormalizeRaw(raw))
	}
	return records, nil
}

// NormalizeText parses delimited text: the delimiter is detected from the
// first line, then rows are parsed and normalized.
func NormalizeText(text string) []Record {
	text = strings.TrimPrefix(text, "\uFEFF")
	delim := DetectDelimiter(FirstLine(text))
	return NormalizeRows(ParseTabular(text, delim))
}

// DetectFormat routes an import by file name and content. A .json extension
// or content starting with '{' or '[' selects JSON; anything else is tabular.
func DetectFormat(fileName string, data []byte) Format {
	if strings.EqualFold(filepath.Ext(fileName), ".json") {
		return FormatJSON
	}

	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatCSV
}

// Decode turns file contents into canonical records, choosing the JSON or
// tabular path with DetectFormat.
func Decode(fileName string, data []byte) ([]Record, Format, error) {
	format := DetectFormat(fileName, data)
	if format == FormatJSON {
		records, err := NormalizeJSON(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
		return records, format, err
	}
	return NormalizeText(string(data)), format, nil
}
