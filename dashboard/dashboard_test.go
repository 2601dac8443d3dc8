// ABOUTME: Tests for dashboard stats against the fake backend
// ABOUTME: Covers stat derivation, whole-dashboard failure and cache sharing with list screens
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/api/apitest"
	"github.com/harperreed/salescrm/models"
	"github.com/harperreed/salescrm/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(srv *apitest.Server) {
	srv.Seed("leads",
		apitest.Record{"name": "A", "email": "a@x.test", "status": "new"},
		apitest.Record{"name": "B", "email": "b@x.test", "status": "converted"},
		apitest.Record{"name": "C", "email": "c@x.test", "status": "disqualified"},
		apitest.Record{"name": "D", "email": "d@x.test", "status": "qualified"},
	)
	srv.Seed("opportunities",
		apitest.Record{"name": "Deal", "amount": "100.00", "stage": "proposal"},
		apitest.Record{"name": "Won", "amount": "50.00", "stage": "won"},
		apitest.Record{"name": "Lost", "amount": "50.00", "stage": "lost"},
	)
	srv.Seed("quotes",
		apitest.Record{"title": "Q1", "total_price": "10.50"},
		apitest.Record{"title": "Q2", "total_price": "4.50"},
		apitest.Record{"title": "Q3"},
		apitest.Record{"title": "Q4", "total_price": "garbage"},
	)
	srv.Seed("tasks",
		apitest.Record{"title": "Call", "type": "call", "due_date": "2026-01-01", "status": "pending", "owner": 1},
		apitest.Record{"title": "Done", "type": "email", "due_date": "2026-01-02", "status": "completed", "owner": 1},
	)
	srv.Seed("interactions", apitest.Record{"type": "note", "summary": "Intro", "contact_name": "Pat"})
	srv.Seed("products",
		apitest.Record{"name": "Widget", "price": "9.99", "is_active": true},
		apitest.Record{"name": "Old", "price": "1.00", "is_active": false},
	)
}

func TestLoadComputesStats(t *testing.T) {
	srv := apitest.NewServer(t)
	seed(srv)
	svc := New(api.NewClient(api.Options{BaseURL: srv.URL}), nil)

	st, err := svc.Load(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 15.0, st.TotalQuotesValue, 0.001)
	assert.Equal(t, 2, st.ActiveLeads)
	assert.Equal(t, 1, st.PendingTasks)
	assert.Equal(t, 1, st.ActiveOpportunities)
	assert.Equal(t, 1, st.ActiveProducts)

	var titles []string
	for _, q := range st.RecentQuotes {
		titles = append(titles, q.Title)
	}
	if diff := cmp.Diff([]string{"Q1", "Q2", "Q3"}, titles); diff != "" {
		t.Errorf("recent quotes mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, st.UpcomingTasks, 1)
	assert.Equal(t, "Call", st.UpcomingTasks[0].Title)
	require.Len(t, st.RecentInteractions, 1)
	assert.Equal(t, "Pat", InteractionSubject(st.RecentInteractions[0]))
}

func TestLoadFailsWhole(t *testing.T) {
	srv := apitest.NewServer(t)
	seed(srv)
	srv.FailNext(http.MethodGet, "/api/v1/products/", http.StatusInternalServerError, `{"detail":"boom"}`)
	svc := New(api.NewClient(api.Options{BaseURL: srv.URL}), nil)

	st, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, st)
	assert.True(t, errors.Is(err, ErrLoad))
}

func TestLoadSharesListCache(t *testing.T) {
	srv := apitest.NewServer(t)
	seed(srv)
	client := api.NewClient(api.Options{BaseURL: srv.URL})
	cache := query.NewCache()
	svc := New(client, cache)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	_, err = svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, srv.CountRequests(http.MethodGet, "/api/v1/leads/"))

	// A list screen mutation drops every cached page of the resource.
	cache.InvalidatePrefix(client.Leads().Path())
	srv.Seed("leads", apitest.Record{"name": "E", "email": "e@x.test", "status": "new"})
	st, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.ActiveLeads)
	assert.Equal(t, 2, srv.CountRequests(http.MethodGet, "/api/v1/leads/"))
}

func TestComputeEmpty(t *testing.T) {
	st := Compute(nil, nil, nil, nil, nil, nil)
	assert.Zero(t, st.TotalQuotesValue)
	assert.Empty(t, st.RecentQuotes)
	assert.Empty(t, st.UpcomingTasks)
}

func TestInteractionSubject(t *testing.T) {
	assert.Equal(t, "Lead", InteractionSubject(models.Interaction{LeadName: "Lead", ContactName: "C"}))
	assert.Equal(t, "Opp", InteractionSubject(models.Interaction{OpportunityName: "Opp"}))
}
