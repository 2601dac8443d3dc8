// ABOUTME: Tests for entity descriptors and the controller set
// ABOUTME: Checks descriptor consistency, required-field messages and name lookup
package entities

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/api/apitest"
	"github.com/harperreed/salescrm/listing"
	"github.com/harperreed/salescrm/notify"
	"github.com/harperreed/salescrm/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorsAreValid(t *testing.T) {
	require.NoError(t, Leads().Validate())
	require.NoError(t, Opportunities().Validate())
	require.NoError(t, Accounts().Validate())
	require.NoError(t, Customers().Validate())
	require.NoError(t, Contacts().Validate())
	require.NoError(t, Products().Validate())
	require.NoError(t, Quotes().Validate())
	require.NoError(t, Tasks().Validate())
	require.NoError(t, Interactions().Validate())
}

func TestDeleteConfirmationOnlyWhereTheProductAsks(t *testing.T) {
	assert.True(t, Products().ConfirmDelete)
	assert.True(t, Quotes().ConfirmDelete)
	assert.True(t, Tasks().ConfirmDelete)
	assert.False(t, Leads().ConfirmDelete)
	assert.False(t, Accounts().ConfirmDelete)
	assert.False(t, Contacts().ConfirmDelete)
}

func newSet(t *testing.T) (*Set, *apitest.Server, *notify.Recorder) {
	t.Helper()
	srv := apitest.NewServer(t)
	notes := &notify.Recorder{}
	set := NewSet(api.NewClient(api.Options{BaseURL: srv.URL}), listing.Options{
		Cache:       query.NewCache(),
		Notifier:    notes,
		SearchDelay: 20 * time.Millisecond,
	})
	t.Cleanup(set.Close)
	return set, srv, notes
}

func TestRequiredFieldMessages(t *testing.T) {
	set, srv, notes := newSet(t)
	ctx := context.Background()

	cases := []struct {
		table string
		draft listing.Draft
		want  string
	}{
		{"accounts", listing.Draft{}, "Account name is required"},
		{"products", listing.Draft{"name": "Widget"}, "Product price is required"},
		{"products", listing.Draft{}, "Product name is required"},
		{"quotes", listing.Draft{}, "Quote title is required"},
		{"quotes", listing.Draft{"title": "Q1"}, "Opportunity is required"},
		{"tasks", listing.Draft{}, "Task title is required"},
		{"tasks", listing.Draft{"title": "Call"}, "Task type is required"},
		{"tasks", listing.Draft{"title": "Call", "type": "call"}, "Due date is required"},
		{"tasks", listing.Draft{"title": "Call", "type": "call", "due_date": "2024-05-01"}, "Owner is required"},
	}

	for _, tc := range cases {
		notes.Reset()
		tbl, err := set.Lookup(tc.table)
		require.NoError(t, err)
		_, err = tbl.Create(ctx, tc.draft)
		require.Error(t, err)
		assert.Equal(t, []string{tc.want}, notes.Errors(), tc.table)
	}
	assert.Empty(t, srv.Requests())
}

func TestCustomersShareAccountsResource(t *testing.T) {
	set, srv, notes := newSet(t)
	ctx := context.Background()
	srv.Seed("accounts", apitest.Record{"name": "Initech"})

	require.NoError(t, set.Accounts.Load(ctx))
	require.NoError(t, set.Customers.Load(ctx))
	assert.Equal(t, 1, srv.CountRequests(http.MethodGet, "/api/v1/accounts/"), "same key, one request")

	_, err := set.Customers.Create(ctx, listing.Draft{"name": "Hooli"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer created successfully"}, notes.Successes())

	require.NoError(t, set.Accounts.Load(ctx))
	assert.Len(t, set.Accounts.View().Rows, 2, "accounts screen sees the new customer")
}

func TestTaskCreatePayload(t *testing.T) {
	set, srv, _ := newSet(t)
	srv.AddUser("ada@example.com", "pw", "Ada", "Lovelace", 1)

	_, err := set.Tasks.Create(context.Background(), listing.Draft{
		"title": "Demo", "type": "demo", "due_date": "2024-05-01", "owner": "1", "related_lead": "",
	})
	require.NoError(t, err)

	req, ok := srv.LastRequest(http.MethodPost, "/api/v1/tasks/")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"title": "Demo", "type": "demo", "due_date": "2024-05-01", "owner": float64(1)}, req.Body)
}

func TestTaskOwnerOptionsComeFromUsers(t *testing.T) {
	set, srv, notes := newSet(t)
	srv.AddUser("zoe@example.com", "pw", "Zoe", "Quinn", 1)
	srv.AddUser("ada@example.com", "pw", "Ada", "Lovelace", 1)
	ctx := context.Background()

	opts, err := set.Tasks.Options(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, []listing.Option{
		{Value: "2", Label: "Ada Lovelace"},
		{Value: "1", Label: "Zoe Quinn"},
	}, opts, "ordered by username")

	_, err = set.Tasks.Create(ctx, listing.Draft{"title": "Demo", "type": "demo", "due_date": "2024-05-01", "owner": "3"})
	require.Error(t, err)
	assert.Equal(t, []string{"Owner 3 is not one of the available options"}, notes.Errors())
	assert.Zero(t, srv.CountRequests(http.MethodPost, "/api/v1/tasks/"))

	_, err = set.Tasks.Options(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.CountRequests(http.MethodGet, "/api/v1/users/"), "user list is cached")
}

func TestQuoteOpportunityOptionsShareTheScreenCache(t *testing.T) {
	set, srv, _ := newSet(t)
	ctx := context.Background()
	srv.Seed("opportunities", apitest.Record{"id": 8, "name": "Renewal", "amount": "100.00"})

	require.NoError(t, set.Opportunities.Load(ctx))
	opts, err := set.Quotes.Options(ctx, "opportunity")
	require.NoError(t, err)
	assert.Equal(t, []listing.Option{{Value: "8", Label: "Renewal"}}, opts)
	assert.Equal(t, 1, srv.CountRequests(http.MethodGet, "/api/v1/opportunities/"), "page 1 fetched once")

	_, err = set.Opportunities.Create(ctx, listing.Draft{"name": "Upsell", "amount": "50"})
	require.Error(t, err, "account is required")
	srv.Seed("accounts", apitest.Record{"id": 30, "name": "Initech"})
	row, err := set.Opportunities.Create(ctx, listing.Draft{"name": "Upsell", "amount": "50", "account": "30"})
	require.NoError(t, err)

	opts, err = set.Quotes.Options(ctx, "opportunity")
	require.NoError(t, err)
	assert.Len(t, opts, 2, "creating an opportunity refreshes the choices")

	_, err = set.Quotes.Create(ctx, listing.Draft{"title": "Q1", "opportunity": strconv.FormatInt(row.ID, 10)})
	require.NoError(t, err)
	_, err = set.Quotes.Create(ctx, listing.Draft{"title": "Q2", "opportunity": "999"})
	assert.Error(t, err)
}

func TestProductCreateDefaultsToActive(t *testing.T) {
	set, srv, _ := newSet(t)

	_, err := set.Products.Create(context.Background(), listing.Draft{"name": "Widget", "price": "9.99", "is_active": ""})
	require.NoError(t, err)

	req, ok := srv.LastRequest(http.MethodPost, "/api/v1/products/")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "Widget", "price": "9.99", "is_active": true}, req.Body)

	_, err = set.Products.Create(context.Background(), listing.Draft{"name": "Gadget", "price": "1.00", "is_active": "false"})
	require.NoError(t, err)
	req, _ = srv.LastRequest(http.MethodPost, "/api/v1/products/")
	assert.Equal(t, false, req.Body["is_active"])
}

func TestLookup(t *testing.T) {
	set, _, _ := newSet(t)

	tbl, err := set.Lookup("Lead")
	require.NoError(t, err)
	assert.Equal(t, "leads", tbl.Plural())

	tbl, err = set.Lookup("opportunities")
	require.NoError(t, err)
	assert.Equal(t, "Opportunity", tbl.Name())

	_, err = set.Lookup("widgets")
	assert.ErrorContains(t, err, "unknown entity")
	assert.Len(t, set.Tables(), 9)
	assert.Equal(t, "leads", set.Names()[0])
}
