// ABOUTME: Field kinds, local validation and payload encoding for form drafts
// ABOUTME: Drafts are string maps; encoding turns them into JSON-shaped API payloads
package listing

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"time"
)

// FieldKind decides how a draft value is validated and encoded.
type FieldKind int

const (
	KindText FieldKind = iota
	KindEmail
	KindDecimal
	KindInteger
	KindDate
	KindChoice
	// KindReference is a foreign key given as a positive integer ID.
	KindReference
	KindBool
)

func (k FieldKind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindDecimal:
		return "decimal"
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	case KindChoice:
		return "choice"
	case KindReference:
		return "reference"
	case KindBool:
		return "bool"
	}
	return "text"
}

// Option is one selectable value of a reference field.
type Option struct {
	Value string
	Label string
}

// OptionsFunc loads the selectable values of a reference field, e.g. the
// first page of the related collection.
type OptionsFunc func(ctx context.Context) ([]Option, error)

// HasOption reports whether value is among opts.
func HasOption(opts []Option, value string) bool {
	return slices.ContainsFunc(opts, func(o Option) bool { return o.Value == value })
}

// DateLayout is the wire format for date fields.
const DateLayout = "2006-01-02"

// ValidationError is a draft rejected before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Draft is the string form of a record being created or edited, keyed by field.
type Draft map[string]string

func (d Draft) clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// validateField checks one value. Blank optional values are always valid.
func validateField[T any](f Field[T], raw string) error {
	v := strings.TrimSpace(raw)
	if v == "" {
		if f.Required {
			return &ValidationError{Field: f.Key, Message: f.RequiredMessage()}
		}
		return nil
	}

	invalid := func(what string) error {
		return &ValidationError{Field: f.Key, Message: fmt.Sprintf("%s must be %s", f.Label, what)}
	}

	switch f.Kind {
	case KindEmail:
		addr, err := mail.ParseAddress(v)
		if err != nil || addr.Address != v {
			return invalid("a valid email address")
		}
	case KindDecimal:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return invalid("a number")
		}
	case KindInteger:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return invalid("a whole number")
		}
	case KindDate:
		if _, err := time.Parse(DateLayout, v); err != nil {
			return invalid("a date (YYYY-MM-DD)")
		}
	case KindChoice:
		if !slices.Contains(f.Choices, v) {
			return invalid("one of " + strings.Join(f.Choices, ", "))
		}
	case KindReference:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return invalid("a record ID")
		}
	case KindBool:
		if _, err := strconv.ParseBool(v); err != nil {
			return invalid("true or false")
		}
	}
	return nil
}

// encodeField converts a validated draft value into its JSON payload value.
// Blank references encode as null so an edit can clear a relation.
func encodeField[T any](f Field[T], raw string) any {
	v := strings.TrimSpace(raw)
	switch f.Kind {
	case KindInteger, KindReference:
		if v == "" {
			return nil
		}
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case KindBool:
		if v == "" {
			return nil
		}
		b, _ := strconv.ParseBool(v)
		return b
	case KindDate, KindChoice, KindDecimal, KindEmail:
		if v == "" {
			return nil
		}
		return v
	}
	return v
}

// validateDraft checks every field of d in descriptor order and returns the first failure.
func validateDraft[T any](fields []Field[T], d Draft) error {
	for _, f := range fields {
		if err := validateField(f, d[f.Key]); err != nil {
			return err
		}
	}
	return nil
}

// createPayload encodes a new-record draft. Blank fields take their default
// or are left out.
func createPayload[T any](fields []Field[T], d Draft) map[string]any {
	payload := make(map[string]any, len(fields))
	for _, f := range fields {
		raw := d[f.Key]
		if strings.TrimSpace(raw) == "" {
			raw = f.Default
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		payload[f.Key] = encodeField(f, raw)
	}
	return payload
}

// draftFrom reads the editable fields of item.
func draftFrom[T any](fields []Field[T], item T, editing bool) Draft {
	d := make(Draft, len(fields))
	for _, f := range fields {
		if editing && f.CreateOnly {
			continue
		}
		d[f.Key] = f.Value(item)
	}
	return d
}
