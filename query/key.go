// ABOUTME: Composite cache keys for paginated list queries
// ABOUTME: A key names one page of one resource for one ordering and optional search term
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Key identifies one list query. Every list-shaping parameter lives here so an
// invalidation always matches the page the view is rendering.
type Key struct {
	// Resource is the collection path, e.g. "/api/v1/leads/".
	Resource string
	Page     int
	Ordering string
	// Search is omitted from the query entirely when empty.
	Search string
}

// Values returns the query parameters for the key.
func (k Key) Values() url.Values {
	v := url.Values{}
	if k.Page > 0 {
		v.Set("page", strconv.Itoa(k.Page))
	}
	if k.Ordering != "" {
		v.Set("ordering", k.Ordering)
	}
	if s := strings.TrimSpace(k.Search); s != "" {
		v.Set("search", s)
	}
	return v
}

// String renders the canonical form, e.g. "/api/v1/leads/?ordering=id&page=1&search=acme".
// Parameters are sorted so equal keys always render identically.
func (k Key) String() string {
	q := k.Values().Encode()
	if q == "" {
		return k.Resource
	}
	return k.Resource + "?" + q
}
