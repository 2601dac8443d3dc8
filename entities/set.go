// ABOUTME: Builds one list controller per entity screen from a shared client and cache
// ABOUTME: Looks screens up by name for the TUI tabs, CLI subcommands and MCP tools
package entities

import (
	"fmt"
	"strings"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/listing"
	"github.com/harperreed/salescrm/models"
	"github.com/harperreed/salescrm/query"
)

// Set holds every entity controller. All share one cache, so a mutation on
// one screen invalidates pages another screen of the same resource cached.
type Set struct {
	Leads         *listing.Controller[models.Lead]
	Opportunities *listing.Controller[models.Opportunity]
	Accounts      *listing.Controller[models.Account]
	Customers     *listing.Controller[models.Account]
	Contacts      *listing.Controller[models.Contact]
	Products      *listing.Controller[models.Product]
	Quotes        *listing.Controller[models.Quote]
	Tasks         *listing.Controller[models.Task]
	Interactions  *listing.Controller[models.Interaction]

	order []listing.Table
}

// NewSet creates the controllers. opts.Cache should be set so screens share
// it; reference fields draw their choices through the same cache.
func NewSet(client *api.Client, opts listing.Options) *Set {
	if opts.Cache == nil {
		opts.Cache = query.NewCache()
	}
	src := newOptionSources(client, opts.Cache)

	s := &Set{
		Leads:         listing.New(withOptions(Leads(), src), client.Leads(), opts),
		Opportunities: listing.New(withOptions(Opportunities(), src), client.Opportunities(), opts),
		Accounts:      listing.New(Accounts(), client.Accounts(), opts),
		Customers:     listing.New(Customers(), client.Accounts(), opts),
		Contacts:      listing.New(withOptions(Contacts(), src), client.Contacts(), opts),
		Products:      listing.New(Products(), client.Products(), opts),
		Quotes:        listing.New(withOptions(Quotes(), src), client.Quotes(), opts),
		Tasks:         listing.New(withOptions(Tasks(), src), client.Tasks(), opts),
		Interactions:  listing.New(withOptions(Interactions(), src), client.Interactions(), opts),
	}
	s.order = []listing.Table{
		s.Leads, s.Opportunities, s.Accounts, s.Contacts, s.Products,
		s.Quotes, s.Tasks, s.Interactions, s.Customers,
	}
	return s
}

// Tables returns the screens in navigation order.
func (s *Set) Tables() []listing.Table {
	return append([]listing.Table(nil), s.order...)
}

// Names returns the plural screen names in navigation order.
func (s *Set) Names() []string {
	names := make([]string, len(s.order))
	for i, t := range s.order {
		names[i] = t.Plural()
	}
	return names
}

// Lookup finds a screen by plural or singular name, case-insensitively.
func (s *Set) Lookup(name string) (listing.Table, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, t := range s.order {
		if n == t.Plural() || n == strings.ToLower(t.Name()) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown entity %q (want one of %s)", name, strings.Join(s.Names(), ", "))
}

// Close cancels pending searches on every screen.
func (s *Set) Close() {
	for _, t := range s.order {
		t.Close()
	}
}
