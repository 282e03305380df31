package core

// convert.go provides coercion from loosely typed import values to the
// canonical Record field types.
//
// These functions handle the messy reality of hand-maintained inventories:
//   - Localized decimal separators ("7,5" as well as "7.5")
//   - Numbers supplied as JSON numbers or as strings
//   - Missing, null, or nested values where a scalar was expected
//
// Coercion never fails. Invalid input becomes "" for text fields and 0 for
// the quantity.

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxQuantity is the largest quantity kept after coercion. Larger values are clamped.
const MaxQuantity = math.MaxInt32

type rawKind uint8

const (
	rawAbsent rawKind = iota
	rawNull
	rawString
	rawNumber
	rawBool
)

// RawValue is one scalar from an import source: absent, null, a string, a
// number, or a boolean. Numbers and booleans keep their literal text.
type RawValue struct {
	kind rawKind
	text string
}

// RawString wraps a string as a present RawValue.
func RawString(s string) RawValue {
	return RawValue{kind: rawString, text: s}
}

// RawNumber wraps the literal text of a number as a present RawValue.
func RawNumber(s string) RawValue {
	return RawValue{kind: rawNumber, text: s}
}

// Null returns a RawValue holding JSON null.
func Null() RawValue {
	return RawValue{kind: rawNull}
}

// Present reports whether the value holds a string, number, or boolean.
func (v RawValue) Present() bool {
	return v.kind == rawString || v.kind == rawNumber || v.kind == rawBool
}

// String returns the value as text, or "" if it is absent or null.
func (v RawValue) String() string {
	if !v.Present() {
		return ""
	}
	return v.text
}

// UnmarshalJSON accepts any JSON value. Objects and arrays are not scalars
// and decode as absent.
func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = RawValue{}
		return nil
	}

	switch data[0] {
	case 'n':
		*v = Null()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = RawString(s)
	case 't', 'f':
		*v = RawValue{kind: rawBool, text: string(data)}
	case '{', '[':
		*v = RawValue{}
	default:
		*v = RawNumber(string(data))
	}
	return nil
}

// RawRecord is one imported object before normalization. Keys are whatever
// the source used; KeyIndex maps them onto canonical fields.
type RawRecord map[string]RawValue

// CoerceText returns the text of a raw value, or "" if it is absent or null.
func CoerceText(v RawValue) string {
	return v.String()
}

// ParseLocaleNumber parses a number that may use a comma as the decimal
// separator. Only the first comma is replaced. Empty input parses as 0.
// NaN and infinities are rejected.
func ParseLocaleNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	s = strings.Replace(s, ",", ".", 1)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceQuantity converts raw quantity text to a non-negative integer.
// Unparseable or negative input yields 0; fractions are truncated.
func CoerceQuantity(s string) int {
	f, ok := ParseLocaleNumber(s)
	if !ok || f < 0 {
		return 0
	}

	f = math.Trunc(f)
	if f > MaxQuantity {
		return MaxQuantity
	}
	return int(f)
}

// CoerceID reuses a non-empty identifier so re-imports update in place,
// and mints a fresh one otherwise.
func CoerceID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewID()
	}
	return s
}

// NewID mints a new record identifier.
func NewID() string {
	return uuid.NewString()
}

// ClampQuantity forces a quantity into the canonical range.
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// Canonicalize applies the Record invariants to a record built outside the
// normalizer, such as one loaded from a database row.
func Canonicalize(r Record) Record {
	r.ID = CoerceID(r.ID)
	r.Quantity = ClampQuantity(r.Quantity)
	return r
}
