package core

// serialize.go renders the record set back to CSV and JSON.
//
// CSV output is written by hand rather than with encoding/csv: a value is
// quoted only when it contains a comma, a line feed or a quote, and rows are
// joined with "\n" without a trailing terminator.

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DefaultExportBaseName is the file name stem used for exports.
const DefaultExportBaseName = "archivio-componenti"

// exportTimestampLayout renders YYYY-MM-DD-HH-MM-SS.
const exportTimestampLayout = "2006-01-02-15-04-05"

// EncodeCSV renders records with the fixed canonical header.
func EncodeCSV(records []Record) []byte {
	var b strings.Builder

	for i, f := range Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(f))
	}

	for _, r := range records {
		b.WriteByte('\n')
		for i, f := range Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(QuoteCSVField(r.Get(f)))
		}
	}

	return []byte(b.String())
}

// QuoteCSVField quotes s if and only if it contains a comma, a line feed or
// a double quote. Inner quotes are doubled.
func QuoteCSVField(s string) string {
	if !strings.ContainsAny(s, ",\n\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// orderedRecord marshals a record as a JSON object whose keys follow the
// canonical field order under a vocabulary.
type orderedRecord struct {
	rec   Record
	vocab Vocabulary
}

func (o orderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range Fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(o.vocab.KeyFor(f))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if f == FieldQuantity {
			buf.WriteString(strconv.Itoa(o.rec.Quantity))
			continue
		}
		val, err := json.Marshal(o.rec.Get(f))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeJSON renders records as an indented JSON array, naming keys with vocab.
func EncodeJSON(records []Record, vocab Vocabulary) ([]byte, error) {
	out := make([]orderedRecord, len(records))
	for i, r := range records {
		out[i] = orderedRecord{rec: r, vocab: vocab}
	}
	return json.MarshalIndent(out, "", "  ")
}

// CSVFileName returns the export name for a CSV snapshot taken at t (UTC).
func CSVFileName(base string, t time.Time) string {
	if base == "" {
		base = DefaultExportBaseName
	}
	return base + "-" + t.UTC().Format(exportTimestampLayout) + ".csv"
}

// JSONFileName returns the fixed export name for JSON snapshots.
func JSONFileName(base string) string {
	if base == "" {
		base = DefaultExportBaseName
	}
	return base + ".json"
}
