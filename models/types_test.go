// ABOUTME: Tests for CRM data models
// ABOUTME: Verifies page envelope decoding, user helpers and money formatting
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageDecodesNullCursors(t *testing.T) {
	raw := `{"count":1,"next":null,"previous":null,"results":[{"id":7,"name":"Acme Corp","email":"hi@acme.com"}]}`

	var page Page[Lead]
	require.NoError(t, json.Unmarshal([]byte(raw), &page))

	assert.Equal(t, 1, page.Count)
	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
	require.Len(t, page.Results, 1)
	assert.Equal(t, int64(7), page.Results[0].ID)
	assert.Equal(t, "Acme Corp", page.Results[0].Name)
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", User{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}.FullName())
	assert.Equal(t, "Ada", User{FirstName: "Ada", Username: "ada"}.FullName())
	assert.Equal(t, "ada@example.com", User{Username: "ada@example.com"}.FullName())
}

func TestUserHasOrganization(t *testing.T) {
	org := int64(3)
	assert.False(t, User{}.HasOrganization())
	assert.True(t, User{Organization: &org}.HasOrganization())
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"", "$0.00"},
		{"1250.5", "$1,250.50"},
		{"1000000", "$1,000,000.00"},
		{"-42.10", "-$42.10"},
		{"abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.in))
		})
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	_, err := ParseAmount("12x")
	assert.Error(t, err)
}
