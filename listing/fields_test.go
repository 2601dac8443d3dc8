// ABOUTME: Tests for draft validation, payload encoding and descriptor checks
// ABOUTME: Table-driven over every field kind
package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct{ v string }

func field(kind FieldKind, required bool) Field[rec] {
	return Field[rec]{
		Key:      "f",
		Label:    "Field",
		Kind:     kind,
		Required: required,
		Choices:  []string{"call", "email"},
		Value:    func(r rec) string { return r.v },
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name  string
		kind  FieldKind
		value string
		ok    bool
	}{
		{"text", KindText, "anything", true},
		{"email", KindEmail, "ann@example.com", true},
		{"email with name", KindEmail, "Ann <ann@example.com>", false},
		{"bad email", KindEmail, "ann", false},
		{"decimal", KindDecimal, "1250.50", true},
		{"bad decimal", KindDecimal, "12,50", false},
		{"integer", KindInteger, "3", true},
		{"bad integer", KindInteger, "3.5", false},
		{"date", KindDate, "2024-02-29", true},
		{"bad date", KindDate, "2023-02-29", false},
		{"choice", KindChoice, "call", true},
		{"bad choice", KindChoice, "fax", false},
		{"reference", KindReference, "12", true},
		{"zero reference", KindReference, "0", false},
		{"bool", KindBool, "true", true},
		{"bad bool", KindBool, "maybe", false},
		{"blank optional", KindDate, "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateField(field(tt.kind, false), tt.value)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "f", verr.Field)
		})
	}
}

func TestRequiredMessage(t *testing.T) {
	f := field(KindText, true)
	err := validateField(f, "")
	assert.EqualError(t, err, "Field is required")

	f.Message = "Task title is required"
	assert.EqualError(t, validateField(f, " "), "Task title is required")
}

func TestEncodeField(t *testing.T) {
	assert.Equal(t, int64(12), encodeField(field(KindReference, false), "12"))
	assert.Nil(t, encodeField(field(KindReference, false), ""))
	assert.Equal(t, true, encodeField(field(KindBool, false), "true"))
	assert.Equal(t, false, encodeField(field(KindBool, false), "false"))
	assert.Nil(t, encodeField(field(KindBool, false), ""))
	assert.Equal(t, "9.99", encodeField(field(KindDecimal, false), " 9.99 "))
	assert.Nil(t, encodeField(field(KindDate, false), ""))
	assert.Equal(t, "", encodeField(field(KindText, false), ""))
}

func TestCreatePayloadSkipsBlankOptionalFields(t *testing.T) {
	fields := []Field[rec]{
		{Key: "title", Kind: KindText, Value: func(rec) string { return "" }},
		{Key: "owner", Kind: KindReference, Value: func(rec) string { return "" }},
		{Key: "notes", Kind: KindText, Value: func(rec) string { return "" }},
		{Key: "is_active", Kind: KindBool, Value: func(rec) string { return "" }},
		{Key: "archived", Kind: KindBool, Value: func(rec) string { return "" }},
	}
	got := createPayload(fields, Draft{"title": "Call", "owner": "4", "notes": "", "is_active": "", "archived": "false"})
	assert.Equal(t, map[string]any{"title": "Call", "owner": int64(4), "archived": false}, got)
}

func TestCreatePayloadUsesDefaults(t *testing.T) {
	fields := []Field[rec]{
		{Key: "is_active", Kind: KindBool, Default: "true", Value: func(rec) string { return "" }},
		{Key: "status", Kind: KindChoice, Choices: []string{"draft", "sent"}, Default: "draft", Value: func(rec) string { return "" }},
	}

	assert.Equal(t, map[string]any{"is_active": true, "status": "draft"}, createPayload(fields, Draft{"is_active": " "}))
	assert.Equal(t, map[string]any{"is_active": false, "status": "sent"},
		createPayload(fields, Draft{"is_active": "false", "status": "sent"}))
}

func TestHasOption(t *testing.T) {
	opts := []Option{{Value: "3", Label: "Ada"}, {Value: "7", Label: "Grace"}}
	assert.True(t, HasOption(opts, "7"))
	assert.False(t, HasOption(opts, "Grace"))
	assert.False(t, HasOption(nil, "3"))

	src := OptionsFunc(func(context.Context) ([]Option, error) { return opts, nil })
	got, err := src(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDescriptorValidate(t *testing.T) {
	d := Descriptor[rec]{
		Name:   "Rec",
		Plural: "recs",
		ID:     func(rec) int64 { return 1 },
		Fields: []Field[rec]{field(KindText, true)},
	}
	require.NoError(t, d.Validate())

	dup := d
	dup.Fields = []Field[rec]{field(KindText, true), field(KindText, false)}
	assert.Error(t, dup.Validate())

	noChoices := d
	f := field(KindChoice, false)
	f.Choices = nil
	noChoices.Fields = []Field[rec]{f}
	assert.Error(t, noChoices.Validate())

	noID := d
	noID.ID = nil
	assert.Error(t, noID.Validate())

	badDefault := d
	f = field(KindBool, false)
	f.Default = "yes please"
	badDefault.Fields = []Field[rec]{f}
	assert.Error(t, badDefault.Validate())
}

func TestViewPaging(t *testing.T) {
	v := View{Page: 2, PageSize: 10, Count: 21}
	assert.Equal(t, 3, v.TotalPages())
	assert.Equal(t, "Page 2 of 3", v.PageLabel())
	assert.Equal(t, 1, View{PageSize: 10}.TotalPages())
}
