// ABOUTME: Home dashboard summary built from the first page of each sales collection
// ABOUTME: Loads lists concurrently through the shared cache and derives pipeline stats
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/models"
	"github.com/harperreed/salescrm/query"
	"golang.org/x/sync/errgroup"
)

const (
	LoadingMessage = "Loading your sales data..."
	ErrorMessage   = "Error loading dashboard data. Please try refreshing the page."
	recentLimit    = 3
)

// ErrLoad wraps any failed collection fetch. The dashboard renders nothing
// but ErrorMessage when it is returned.
var ErrLoad = errors.New("dashboard data unavailable")

// Stats is the dashboard summary. Counts cover the first page of each list.
type Stats struct {
	TotalQuotesValue    float64
	ActiveLeads         int
	PendingTasks        int
	ActiveOpportunities int
	ActiveProducts      int

	RecentQuotes       []models.Quote
	UpcomingTasks      []models.Task
	RecentInteractions []models.Interaction
}

// Service loads dashboard data. Pages share cache keys with the list screens,
// so a mutation on any screen invalidates the numbers shown here.
type Service struct {
	client *api.Client
	cache  *query.Cache
}

func New(client *api.Client, cache *query.Cache) *Service {
	if cache == nil {
		cache = query.NewCache()
	}
	return &Service{client: client, cache: cache}
}

func firstPage[T any](ctx context.Context, cache *query.Cache, res *api.Resource[T], out *[]T) error {
	params := api.ListParams{Page: 1, Ordering: "id"}
	page, err := query.Get(ctx, cache, res.ListKey(params), func(ctx context.Context) (*models.Page[T], error) {
		return res.List(ctx, params)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", res.Name(), err)
	}
	*out = page.Results
	return nil
}

// Load fetches leads, opportunities, quotes, tasks, interactions and products.
// A failure in any of them fails the whole dashboard.
func (s *Service) Load(ctx context.Context) (*Stats, error) {
	var (
		leads        []models.Lead
		opps         []models.Opportunity
		quotes       []models.Quote
		tasks        []models.Task
		interactions []models.Interaction
		products     []models.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return firstPage(gctx, s.cache, s.client.Leads(), &leads) })
	g.Go(func() error { return firstPage(gctx, s.cache, s.client.Opportunities(), &opps) })
	g.Go(func() error { return firstPage(gctx, s.cache, s.client.Quotes(), &quotes) })
	g.Go(func() error { return firstPage(gctx, s.cache, s.client.Tasks(), &tasks) })
	g.Go(func() error { return firstPage(gctx, s.cache, s.client.Interactions(), &interactions) })
	g.Go(func() error { return firstPage(gctx, s.cache, s.client.Products(), &products) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	return Compute(leads, opps, quotes, tasks, interactions, products), nil
}

// Compute derives the summary from already-fetched lists.
func Compute(leads []models.Lead, opps []models.Opportunity, quotes []models.Quote, tasks []models.Task, interactions []models.Interaction, products []models.Product) *Stats {
	st := &Stats{}

	for _, q := range quotes {
		// Unparseable totals count as zero.
		v, _ := models.ParseAmount(q.TotalPrice)
		st.TotalQuotesValue += v
	}
	for _, l := range leads {
		if l.Status != models.LeadStatusConverted && l.Status != models.LeadStatusDisqualified {
			st.ActiveLeads++
		}
	}
	for _, t := range tasks {
		if t.Status != models.TaskStatusCompleted {
			st.PendingTasks++
			if len(st.UpcomingTasks) < recentLimit {
				st.UpcomingTasks = append(st.UpcomingTasks, t)
			}
		}
	}
	for _, o := range opps {
		if o.Stage != models.StageWon && o.Stage != models.StageLost {
			st.ActiveOpportunities++
		}
	}
	for _, p := range products {
		if p.IsActive {
			st.ActiveProducts++
		}
	}

	st.RecentQuotes = head(quotes, recentLimit)
	st.RecentInteractions = head(interactions, recentLimit)
	return st
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// InteractionSubject names what an interaction was about.
func InteractionSubject(i models.Interaction) string {
	switch {
	case i.LeadName != "":
		return i.LeadName
	case i.ContactName != "":
		return i.ContactName
	}
	return i.OpportunityName
}

// Reload drops the cached pages behind the dashboard and loads them again.
func (s *Service) Reload(ctx context.Context) (*Stats, error) {
	for _, path := range []string{
		s.client.Leads().Path(),
		s.client.Opportunities().Path(),
		s.client.Quotes().Path(),
		s.client.Tasks().Path(),
		s.client.Interactions().Path(),
		s.client.Products().Path(),
	} {
		s.cache.InvalidatePrefix(path)
	}
	return s.Load(ctx)
}
