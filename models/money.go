// ABOUTME: Helpers for decimal money strings returned by the API
// ABOUTME: Parses and formats amounts without losing the backend's string representation
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount parses a decimal string such as "1250.00". Empty strings are zero.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// FormatAmount renders an amount as "$1,250.00". Unparseable input is returned unchanged.
func FormatAmount(s string) string {
	v, err := ParseAmount(s)
	if err != nil {
		return s
	}
	return FormatMoney(v)
}

// FormatMoney renders a float with a dollar sign and thousands separators.
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(whole, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
