package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestQuoteCSVField(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{"line1\nline2", "\"line1\nline2\""},
		{`12" rack`, `"12"" rack"`},
		{"semi;colon", "semi;colon"},
		{"tab\there", "tab\there"},
		{" padded ", " padded "},
	}
	for _, tt := range tests {
		if got := QuoteCSVField(tt.input); got != tt.want {
			t.Errorf("QuoteCSVField(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	records := []Record{
		{ID: "1", Name: "LED", Quantity: 5, Drawer: "C1", Notes: "line1\nline2"},
		{ID: "2", Name: `Jack 3,5mm "stereo"`, Quantity: 0},
	}

	got := string(EncodeCSV(records))
	want := "id,name,category,quantity,drawer,value,package,notes\n" +
		"1,LED,,5,C1,,,\"line1\nline2\"\n" +
		"2,\"Jack 3,5mm \"\"stereo\"\"\",,0,,,,"
	if got != want {
		t.Errorf("EncodeCSV =\n%q\nwant\n%q", got, want)
	}
}

func TestEncodeCSV_Empty(t *testing.T) {
	got := string(EncodeCSV(nil))
	if got != "id,name,category,quantity,drawer,value,package,notes" {
		t.Errorf("EncodeCSV(nil) = %q", got)
	}
}

// A single plain field survives encode then parse unchanged.
func TestCSVFieldRoundTrip(t *testing.T) {
	for _, s := range []string{"x", "LED 5mm", "10kΩ", "tab\tsep", "semi;colon", "  spaces  "} {
		rows := ParseTabular(QuoteCSVField(s), ',')
		if len(rows) != 1 || len(rows[0]) != 1 || rows[0][0] != s {
			t.Errorf("round trip of %q gave %q", s, rows)
		}
	}
}

// Records survive EncodeCSV, ParseTabular and NormalizeRows.
func TestCSVRecordRoundTrip(t *testing.T) {
	records := []Record{
		{ID: "a1", Name: "Resistenza 10kΩ", Category: "Resistenze", Quantity: 120, Drawer: "A1", Value: "10kΩ", Package: "0805", Notes: "Pacco nuovo"},
		{ID: "a2", Name: `Display 0,96" OLED`, Quantity: 0, Notes: "riga1\nriga2\n\"citato\""},
		{ID: "a3", Name: "", Category: "solo categoria"},
		{ID: "a4", Name: "spazi ", Value: " 4,7k", Package: "SOT-23;3"},
	}

	text := string(EncodeCSV(records))
	got := NormalizeText(text)

	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d:\n got  %+v\n want %+v", i, got[i], records[i])
		}
	}
}

func TestEncodeJSON(t *testing.T) {
	records := []Record{{ID: "1", Name: "LED", Quantity: 7, Notes: "a\nb"}}

	data, err := EncodeJSON(records, Vocabulary{Key: CanonicalVocabulary})
	if err != nil {
		t.Fatalf("EncodeJSON error: %v", err)
	}

	text := string(data)
	if !strings.HasPrefix(text, "[\n  {\n    \"id\": \"1\",\n    \"name\": \"LED\",") {
		t.Errorf("unexpected layout:\n%s", text)
	}
	if !strings.Contains(text, `"quantity": 7,`) {
		t.Errorf("quantity must be a JSON number:\n%s", text)
	}

	// Key order follows the canonical field order.
	last := -1
	for _, f := range Fields {
		i := strings.Index(text, `"`+string(f)+`"`)
		if i < last {
			t.Errorf("field %s out of order", f)
		}
		last = i
	}
}

func TestEncodeJSON_Vocabulary(t *testing.T) {
	vocab := Vocabulary{Key: "x", Keys: map[Field]string{FieldName: "nome", FieldQuantity: "quantità"}}
	data, err := EncodeJSON([]Record{{ID: "1", Name: "LED", Quantity: 3}}, vocab)
	if err != nil {
		t.Fatalf("EncodeJSON error: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	obj := decoded[0]
	if obj["nome"] != "LED" || obj["quantità"] != float64(3) || obj["category"] != "" {
		t.Errorf("decoded = %v", obj)
	}
	if _, ok := obj["name"]; ok {
		t.Error("canonical key leaked into vocabulary output")
	}

	back, err := NormalizeJSON(data)
	if err != nil || len(back) != 1 || back[0].Name != "LED" || back[0].Quantity != 3 {
		t.Errorf("re-import = %+v, %v", back, err)
	}
}

func TestEncodeJSON_Empty(t *testing.T) {
	data, err := EncodeJSON(nil, Vocabulary{})
	if err != nil || string(data) != "[]" {
		t.Errorf("EncodeJSON(nil) = %q, %v", data, err)
	}
}

func TestExportFileNames(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.FixedZone("CET", 3600))

	if got := CSVFileName("inventario", ts); got != "inventario-2024-03-09-13-05-07.csv" {
		t.Errorf("CSVFileName = %q", got)
	}
	if got := CSVFileName("", ts); got != DefaultExportBaseName+"-2024-03-09-13-05-07.csv" {
		t.Errorf("CSVFileName default = %q", got)
	}
	if got := JSONFileName(""); got != DefaultExportBaseName+".json" {
		t.Errorf("JSONFileName = %q", got)
	}
}
