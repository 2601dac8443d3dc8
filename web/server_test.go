// ABOUTME: Tests for the read-only web UI
// ABOUTME: Renders dashboard, list and detail pages against the fake backend
package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/api/apitest"
	"github.com/harperreed/salescrm/dashboard"
	"github.com/harperreed/salescrm/entities"
	"github.com/harperreed/salescrm/listing"
	"github.com/harperreed/salescrm/logging"
	"github.com/harperreed/salescrm/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*Server, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	client := api.NewClient(api.Options{BaseURL: srv.URL})
	cache := query.NewCache()
	set := entities.NewSet(client, listing.Options{Cache: cache})
	t.Cleanup(set.Close)

	s, err := NewServer(set, dashboard.New(client, cache), logging.Discard())
	require.NoError(t, err)
	return s, srv
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDashboardPage(t *testing.T) {
	s, srv := setupTestServer(t)
	srv.Seed("quotes", apitest.Record{"id": 9, "title": "Big deal", "total_price": "1200.00", "created_by_name": "Ada"})

	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "$1,200.00")
	assert.Contains(t, rec.Body.String(), `<a href="/quotes/9">Big deal</a> by Ada`)
	assert.Contains(t, rec.Body.String(), "No pending tasks found")

	srv.FailNext(http.MethodGet, "/api/v1/leads/", http.StatusInternalServerError, `{"detail":"boom"}`)
	rec = get(t, s, "/?refresh=1")
	assert.Contains(t, rec.Body.String(), dashboard.ErrorMessage)
}

func TestListPage(t *testing.T) {
	s, srv := setupTestServer(t)
	srv.Seed("contacts",
		apitest.Record{"id": 3, "name": "Pat", "email": "pat@x.test"},
		apitest.Record{"id": 4, "name": "Sam", "email": "sam@x.test"},
	)

	rec := get(t, s, "/contacts")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<th>Name</th>")
	assert.Contains(t, body, "Pat")
	assert.Contains(t, body, "Page 1 of 1")

	rec = get(t, s, "/contacts?q=sam")
	assert.Contains(t, rec.Body.String(), "Sam")
	assert.NotContains(t, rec.Body.String(), "pat@x.test")

	rec = get(t, s, "/leads")
	assert.Contains(t, rec.Body.String(), "No leads found.")

	rec = get(t, s, "/widgets")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDetailPage(t *testing.T) {
	s, srv := setupTestServer(t)
	srv.Seed("quotes", apitest.Record{
		"id": 7, "title": "Renewal", "total_price": "30.00",
		"line_items": []any{
			map[string]any{"id": 1, "product": 2, "product_name": "Widget", "quantity": 3, "unit_price": "10.00", "total_price": "30.00"},
		},
	})

	rec := get(t, s, "/quotes/7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Renewal")
	assert.Contains(t, rec.Body.String(), "<td>Widget</td><td>3</td>")

	assert.Equal(t, http.StatusNotFound, get(t, s, "/quotes/404").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/quotes/abc").Code)
}
