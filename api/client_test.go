// ABOUTME: Tests for the REST client against the in-memory fake backend
// ABOUTME: Covers list keys, CRUD round trips, error decoding and request headers
package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/api/apitest"
	"github.com/harperreed/salescrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newClient(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	return api.NewClient(api.Options{BaseURL: srv.URL + "/"}), srv
}

func TestListKeyOmitsEmptySearch(t *testing.T) {
	c, _ := newClient(t)
	leads := c.Leads()

	key := leads.ListKey(api.ListParams{Page: 1, Ordering: "id"})
	assert.Equal(t, "/api/v1/leads/?ordering=id&page=1", key.String())
	assert.False(t, key.Values().Has("search"))

	key = leads.ListKey(api.ListParams{Page: 2, Ordering: "id", Search: "acme"})
	assert.Equal(t, "/api/v1/leads/?ordering=id&page=2&search=acme", key.String())
}

func TestListPagesAndSearches(t *testing.T) {
	c, srv := newClient(t)
	for i := 0; i < 12; i++ {
		srv.Seed("leads", apitest.Record{"name": "Lead", "email": "l@example.com"})
	}
	srv.Seed("leads", apitest.Record{"name": "Acme Buyer", "email": "buyer@acme.test"})

	ctx := context.Background()
	page, err := c.Leads().List(ctx, api.ListParams{Page: 1, Ordering: "id"})
	require.NoError(t, err)
	assert.Equal(t, 13, page.Count)
	assert.Len(t, page.Results, 10)
	assert.NotNil(t, page.Next)
	assert.Nil(t, page.Previous)

	page, err = c.Leads().List(ctx, api.ListParams{Page: 2, Ordering: "id"})
	require.NoError(t, err)
	assert.Len(t, page.Results, 3)
	assert.Nil(t, page.Next)

	page, err = c.Leads().List(ctx, api.ListParams{Page: 1, Ordering: "id", Search: "acme"})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Acme Buyer", page.Results[0].Name)

	req, ok := srv.LastRequest(http.MethodGet, "/api/v1/leads/")
	require.True(t, ok)
	assert.Equal(t, "ordering=id&page=1&search=acme", req.Query)
}

func TestListEmptyResultsIsNotNil(t *testing.T) {
	c, _ := newClient(t)

	page, err := c.Products().List(context.Background(), api.ListParams{Page: 1, Ordering: "id"})
	require.NoError(t, err)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
}

func TestCreateRetrieveUpdateDestroy(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()
	products := c.Products()

	created, err := products.Create(ctx, map[string]any{"name": "Widget", "price": "9.99", "is_active": true})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Widget", created.Name)

	got, err := products.Retrieve(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "9.99", got.Price)

	updated, err := products.PartialUpdate(ctx, created.ID, map[string]any{"price": "12.00"})
	require.NoError(t, err)
	assert.Equal(t, "12.00", updated.Price)
	assert.Equal(t, "Widget", updated.Name)

	req, ok := srv.LastRequest(http.MethodPatch, "/api/v1/products/1/")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"price": "12.00"}, req.Body)

	require.NoError(t, products.Destroy(ctx, created.ID))
	assert.Equal(t, 0, srv.Len("products"))

	_, err = products.Retrieve(ctx, created.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestRetrieveNonPositiveIDIsNotFound(t *testing.T) {
	c, srv := newClient(t)

	_, err := c.Quotes().Retrieve(context.Background(), 0)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Empty(t, srv.Requests(), "no request for an invalid id")
}

func TestBackendRejectionCarriesFieldErrors(t *testing.T) {
	c, srv := newClient(t)
	srv.FailNext(http.MethodPost, "/api/v1/leads/", http.StatusBadRequest,
		`{"email": ["Enter a valid email address."], "non_field_errors": ["Duplicate lead."]}`)

	_, err := c.Leads().Create(context.Background(), map[string]any{"name": "x", "email": "bad"})
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Duplicate lead.", apiErr.Detail)
	assert.Equal(t, []string{"Enter a valid email address."}, apiErr.Fields["email"])
	assert.Contains(t, err.Error(), "email: Enter a valid email address.")
}

func TestNonJSONErrorBody(t *testing.T) {
	c, srv := newClient(t)
	srv.FailNext(http.MethodGet, "/api/v1/tasks/", http.StatusBadGateway, "<html>bad gateway</html>")

	_, err := c.Tasks().List(context.Background(), api.ListParams{Page: 1})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "<html>bad gateway</html>", apiErr.Detail)
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	c, srv := newClient(t)
	srv.RequireAuth = true

	_, err := c.Accounts().List(context.Background(), api.ListParams{Page: 1})
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.NotErrorIs(t, err, api.ErrNotFound)
}

func TestTransportErrorWhenServerIsDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := api.NewClient(api.Options{BaseURL: url, Timeout: time.Second})
	_, err := c.Leads().List(context.Background(), api.ListParams{Page: 1})

	var te *api.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.MethodGet, te.Method)
	assert.Equal(t, "/api/v1/leads/", te.Path)
}

func TestEveryRequestHasUniqueRequestID(t *testing.T) {
	seen := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		assert.Len(t, id, 26)
		assert.False(t, seen[id])
		seen[id] = true
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":0,"next":null,"previous":null,"results":[]}`))
	}))
	defer srv.Close()

	c := api.NewClient(api.Options{BaseURL: srv.URL})
	for i := 0; i < 3; i++ {
		_, err := c.Contacts().List(context.Background(), api.ListParams{Page: 1})
		require.NoError(t, err)
	}
	assert.Len(t, seen, 3)
}

func TestRateLimitHonorsContext(t *testing.T) {
	c, _ := newClient(t)
	limited := api.NewClient(api.Options{BaseURL: c.BaseURL(), RateLimit: 0.001, Burst: 1})

	ctx := context.Background()
	_, err := limited.Leads().List(ctx, api.ListParams{Page: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = limited.Leads().List(ctx, api.ListParams{Page: 1})
	var te *api.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestTokenSourceAddsBearer(t *testing.T) {
	c, srv := newClient(t)
	srv.RequireAuth = true
	srv.AddUser("ada@example.com", "secret-pass", "Ada", "Lovelace", 1)

	pair, err := c.ObtainToken(context.Background(), "ada@example.com", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	authed := c.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: pair.Access}))
	me, err := authed.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", me.FullName())
	assert.True(t, me.HasOrganization())

	req, ok := srv.LastRequest(http.MethodGet, "/api/v1/me/")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+pair.Access, req.Auth)
}

func TestObtainTokenRejectsBadCredentials(t *testing.T) {
	c, srv := newClient(t)
	srv.AddUser("ada@example.com", "secret-pass", "Ada", "", 0)

	_, err := c.ObtainToken(context.Background(), "ada@example.com", "wrong")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "No active account found with the given credentials", apiErr.Detail)
}

func TestRefreshTokenKeepsRefresh(t *testing.T) {
	c, srv := newClient(t)
	srv.AddUser("ada@example.com", "secret-pass", "Ada", "", 0)

	pair, err := c.ObtainToken(context.Background(), "ada@example.com", "secret-pass")
	require.NoError(t, err)

	next, err := c.RefreshToken(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, next.Access)
	assert.Equal(t, pair.Refresh, next.Refresh)
	assert.Equal(t, 1, srv.Refreshes())
}

func TestRegisterAndCreateOrganization(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()

	user, err := c.Register(ctx, api.Registration{
		Email: "grace@example.com", Password: "longenough", ConfirmPassword: "longenough",
		FirstName: "Grace", LastName: "Hopper",
	})
	require.NoError(t, err)
	assert.False(t, user.HasOrganization())

	pair, err := c.ObtainToken(ctx, "grace@example.com", "longenough")
	require.NoError(t, err)
	authed := c.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: pair.Access}))

	org, err := authed.CreateOrganization(ctx, "Navy", "COBOL shop")
	require.NoError(t, err)
	assert.Equal(t, "Navy", org.Name)

	me, err := authed.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.HasOrganization())
	assert.Equal(t, org.ID, *me.Organization)
	assert.Equal(t, models.RoleAdmin, me.Role)

	_, err = authed.CreateOrganization(ctx, "Again", "")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "You already belong to an organization", apiErr.Detail)
	assert.Equal(t, 1, srv.Len("organizations"))
}

func TestProfileAndPassword(t *testing.T) {
	c, srv := newClient(t)
	ctx := context.Background()
	srv.AddUser("ada@example.com", "secret-pass", "Ada", "", 1)

	pair, err := c.ObtainToken(ctx, "ada@example.com", "secret-pass")
	require.NoError(t, err)
	authed := c.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: pair.Access}))

	user, err := authed.UpdateProfile(ctx, api.ProfileUpdate{FirstName: "Augusta", LastName: "King"})
	require.NoError(t, err)
	assert.Equal(t, "Augusta King", user.FullName())

	err = authed.ChangePassword(ctx, "wrong", "new-password", "new-password")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Current password is incorrect", apiErr.Detail)

	require.NoError(t, authed.ChangePassword(ctx, "secret-pass", "new-password", "new-password"))
	_, err = c.ObtainToken(ctx, "ada@example.com", "new-password")
	require.NoError(t, err)
}

func TestUsersIsUnpaginated(t *testing.T) {
	c, srv := newClient(t)
	srv.AddUser("zed@example.com", "pw", "Z", "", 1)
	srv.AddUser("amy@example.com", "pw", "A", "", 1)

	users, err := c.Users(context.Background(), api.ListParams{Page: 3, Ordering: "username"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "amy@example.com", users[0].Username)

	req, ok := srv.LastRequest(http.MethodGet, "/api/v1/users/")
	require.True(t, ok)
	assert.Equal(t, "ordering=username", req.Query)
}
