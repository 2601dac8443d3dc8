// ABOUTME: Error taxonomy for API calls
// ABOUTME: Separates transport failures from backend rejections and not-found responses
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNotFound matches any *Error with status 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized matches any *Error with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Error is a response the backend rejected.
type Error struct {
	StatusCode int
	// Detail is the top-level "detail" or "error" message, when present.
	Detail string
	// Fields holds per-field validation messages.
	Fields map[string][]string
}

func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}

// Message joins the detail and field messages, e.g. "email: Enter a valid email address.".
func (e *Error) Message() string {
	var parts []string
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// decodeError understands the DRF shapes: {"detail": ...}, {"error": ...} and {"field": ["msg"]}.
func decodeError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Detail = strings.TrimSpace(string(body))
		if len(apiErr.Detail) > 200 {
			apiErr.Detail = apiErr.Detail[:200]
		}
		return apiErr
	}

	for key, value := range raw {
		var s string
		if json.Unmarshal(value, &s) == nil {
			if key == "detail" || key == "error" || key == "message" {
				apiErr.Detail = s
				continue
			}
			apiErr.addField(key, s)
			continue
		}

		var list []string
		if json.Unmarshal(value, &list) == nil {
			if key == "error" || key == "non_field_errors" {
				apiErr.Detail = strings.Join(list, " ")
				continue
			}
			apiErr.addField(key, list...)
		}
	}

	return apiErr
}

func (e *Error) addField(key string, msgs ...string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[key] = append(e.Fields[key], msgs...)
}
