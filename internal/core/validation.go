package core

// validation.go checks a part submitted through the edit path.
//
// Imports never fail on field content; coercion absorbs bad values. Edits are
// stricter: a blank name blocks the save, and a quantity that does not parse
// or is negative is rejected instead of silently becoming 0.

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNameRequired is returned when an edited part has a blank name.
	ErrNameRequired = errors.New("name is required")

	// ErrInvalidQuantity is returned when an edited quantity is not a
	// non-negative number.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// RecordInput is a part as submitted by a form or API client. Quantity is
// text so localized input like "7,5" goes through the same parser as imports.
type RecordInput struct {
	ID       string `json:"id" form:"id"`
	Name     string `json:"name" form:"name" validate:"notblank"`
	Category string `json:"category" form:"category"`
	Quantity string `json:"quantity" form:"quantity" validate:"quantity"`
	Drawer   string `json:"drawer" form:"drawer"`
	Value    string `json:"value" form:"value"`
	Package  string `json:"package" form:"package"`
	Notes    string `json:"notes" form:"notes"`
}

// Record converts validated input to a canonical record, minting an id when
// none was given.
func (in RecordInput) Record() Record {
	return Record{
		ID:       CoerceID(in.ID),
		Name:     in.Name,
		Category: in.Category,
		Quantity: CoerceQuantity(in.Quantity),
		Drawer:   in.Drawer,
		Value:    in.Value,
		Package:  in.Package,
		Notes:    in.Notes,
	}
}

// InputFromRecord is the inverse of RecordInput.Record, used to prefill forms.
func InputFromRecord(r Record) RecordInput {
	return RecordInput{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Quantity: r.Get(FieldQuantity),
		Drawer:   r.Drawer,
		Value:    r.Value,
		Package:  r.Package,
		Notes:    r.Notes,
	}
}

// ValidationError lists the failing fields of one input. It unwraps to the
// sentinel of the first failing field in canonical order.
type ValidationError struct {
	Fields map[string]string // json field name -> message
	cause  error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

// Validator wraps go-playground/validator with the part rules registered.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator with the notblank and quantity tags.
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("quantity", func(fl validator.FieldLevel) bool {
		n, ok := ParseLocaleNumber(fl.Field().String())
		return ok && n >= 0
	})

	return &Validator{v: v}
}

// Validate checks in and returns a *ValidationError on failure.
func (v *Validator) Validate(in RecordInput) error {
	err := v.v.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "notblank":
			out.Fields[fe.Field()] = "is required"
			if out.cause == nil {
				out.cause = ErrNameRequired
			}
		case "quantity":
			out.Fields[fe.Field()] = "must be a number of zero or more"
			if out.cause == nil {
				out.cause = ErrInvalidQuantity
			}
		default:
			out.Fields[fe.Field()] = "is invalid"
		}
	}
	return out
}
