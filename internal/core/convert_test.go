package core

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// ParseLocaleNumber Tests
// ----------------------------------------------------------------------------

func TestParseLocaleNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"integer", "10", 10, true},
		{"period decimal", "7.5", 7.5, true},
		{"comma decimal", "7,5", 7.5, true},
		{"surrounding spaces", "  42 ", 42, true},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"negative", "-3", -3, true},
		{"exponent", "1e3", 1000, true},
		{"only first comma replaced", "1,000,5", 0, false},
		{"text", "tanti", 0, false},
		{"trailing unit", "10pz", 0, false},
		{"nan", "NaN", 0, false},
		{"infinity", "Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLocaleNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseLocaleNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseLocaleNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// Comma and period spellings of the same number must parse identically.
func TestParseLocaleNumber_CommaMatchesPeriod(t *testing.T) {
	pattern := regexp.MustCompile(`^-?\d+([.,]\d+)?$`)
	inputs := []string{"0", "12", "-4", "3,14", "3.14", "-0,5", "100,25", "99,999"}

	for _, in := range inputs {
		if !pattern.MatchString(in) {
			t.Fatalf("bad fixture %q", in)
		}
		comma, ok1 := ParseLocaleNumber(strings.Replace(in, ".", ",", 1))
		period, ok2 := ParseLocaleNumber(strings.Replace(in, ",", ".", 1))
		if !ok1 || !ok2 || comma != period {
			t.Errorf("%q: comma=%v(%v) period=%v(%v)", in, comma, ok1, period, ok2)
		}
		if period < 0 && CoerceQuantity(in) != 0 {
			t.Errorf("CoerceQuantity(%q) = %d, want 0 for negative", in, CoerceQuantity(in))
		}
	}
}

// ----------------------------------------------------------------------------
// CoerceQuantity Tests
// ----------------------------------------------------------------------------

func TestCoerceQuantity(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"10", 10},
		{"7,5", 7},
		{"7.9", 7},
		{"0,99", 0},
		{"-1", 0},
		{"-0,5", 0},
		{"", 0},
		{"abc", 0},
		{"1e20", MaxQuantity},
		{"2147483647", math.MaxInt32},
	}

	for _, tt := range tests {
		if got := CoerceQuantity(tt.input); got != tt.want {
			t.Errorf("CoerceQuantity(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestClampQuantity(t *testing.T) {
	if got := ClampQuantity(-5); got != 0 {
		t.Errorf("ClampQuantity(-5) = %d, want 0", got)
	}
	if got := ClampQuantity(12); got != 12 {
		t.Errorf("ClampQuantity(12) = %d, want 12", got)
	}
	if got := ClampQuantity(MaxQuantity + 1); got != MaxQuantity {
		t.Errorf("ClampQuantity(max+1) = %d, want %d", got, MaxQuantity)
	}
}

// ----------------------------------------------------------------------------
// CoerceID / Canonicalize Tests
// ----------------------------------------------------------------------------

func TestCoerceID(t *testing.T) {
	if got := CoerceID(" abc "); got != "abc" {
		t.Errorf("CoerceID kept %q, want %q", got, "abc")
	}

	a, b := CoerceID(""), CoerceID("   ")
	if a == "" || b == "" {
		t.Fatal("CoerceID returned an empty id")
	}
	if a == b {
		t.Errorf("CoerceID minted the same id twice: %q", a)
	}
}

func TestCanonicalize(t *testing.T) {
	r := Canonicalize(Record{Name: "x", Quantity: -3})
	if r.ID == "" {
		t.Error("Canonicalize left the id empty")
	}
	if r.Quantity != 0 {
		t.Errorf("Canonicalize quantity = %d, want 0", r.Quantity)
	}
}

// ----------------------------------------------------------------------------
// RawValue Tests
// ----------------------------------------------------------------------------

func TestRawValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantText    string
		wantPresent bool
	}{
		{"string", `"7,5"`, "7,5", true},
		{"number keeps literal", `7.50`, "7.50", true},
		{"bool", `true`, "true", true},
		{"null", `null`, "", false},
		{"object", `{"a":1}`, "", false},
		{"array", `[1,2]`, "", false},
		{"escaped string", `"a\"b"`, `a"b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v RawValue
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.input, err)
			}
			if v.Present() != tt.wantPresent {
				t.Errorf("Present() = %v, want %v", v.Present(), tt.wantPresent)
			}
			if CoerceText(v) != tt.wantText {
				t.Errorf("CoerceText = %q, want %q", CoerceText(v), tt.wantText)
			}
		})
	}
}
