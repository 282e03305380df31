package core

// tabular.go implements a lenient delimited-text parser.
//
// The parser is a two-state automaton (unquoted, quoted) fed one rune at a
// time. It never fails: an unbalanced quote absorbs the rest of the input
// into the current field. Callers filter blank rows themselves.

import "strings"

// ParseTabular splits text into rows of fields using delim.
//
// Rules:
//   - A quote at the start of a field opens a quoted section; inside it a
//     doubled quote is a literal quote and a lone quote closes the section.
//   - Outside quotes, delim ends the field, '\r' is dropped and '\n' ends the row.
//   - The last field and row are flushed at end of input, so empty input
//     yields one row with one empty field.
func ParseTabular(text string, delim rune) [][]string {
	var (
		rows    [][]string
		row     []string
		cur     strings.Builder
		quoted  bool
		started bool // current field has consumed input
	)

	endField := func() {
		row = append(row, cur.String())
		cur.Reset()
		started = false
	}
	endRow := func() {
		endField()
		rows = append(rows, row)
		row = nil
	}

	src := []rune(text)
	for i := 0; i < len(src); i++ {
		ch := src[i]

		if quoted {
			switch {
			case ch == '"' && i+1 < len(src) && src[i+1] == '"':
				cur.WriteRune('"')
				i++
			case ch == '"':
				quoted = false
			default:
				cur.WriteRune(ch)
			}
			continue
		}

		switch {
		case ch == '"' && !started:
			quoted = true
			started = true
		case ch == delim:
			endField()
		case ch == '\r':
			// dropped so CRLF input parses like LF input
		case ch == '\n':
			endRow()
		default:
			cur.WriteRune(ch)
			started = true
		}
	}
	endRow()

	return rows
}

// IsBlankRow reports whether every cell is empty or whitespace.
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
