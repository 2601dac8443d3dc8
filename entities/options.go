// ABOUTME: Option sources for reference fields
// ABOUTME: Fills foreign-key choices from the first page of the related collection or the user list
package entities

import (
	"context"
	"strconv"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/listing"
	"github.com/harperreed/salescrm/models"
	"github.com/harperreed/salescrm/query"
)

// references maps each reference field key to the collection it points at.
var references = map[string]string{
	"account":             "accounts",
	"contact":             "contacts",
	"lead":                "leads",
	"related_lead":        "leads",
	"opportunity":         "opportunities",
	"related_opportunity": "opportunities",
	"owner":               "users",
	"assigned_to":         "users",
}

type optionSources map[string]listing.OptionsFunc

func newOptionSources(client *api.Client, cache *query.Cache) optionSources {
	return optionSources{
		"accounts": firstPage(client.Accounts(), cache, func(a models.Account) listing.Option {
			return listing.Option{Value: strconv.FormatInt(a.ID, 10), Label: a.Name}
		}),
		"contacts": firstPage(client.Contacts(), cache, func(c models.Contact) listing.Option {
			title := c.Title
			if title == "" {
				title = "No title"
			}
			return listing.Option{Value: strconv.FormatInt(c.ID, 10), Label: c.Name + " (" + title + ")"}
		}),
		"leads": firstPage(client.Leads(), cache, func(l models.Lead) listing.Option {
			return listing.Option{Value: strconv.FormatInt(l.ID, 10), Label: l.Name}
		}),
		"opportunities": firstPage(client.Opportunities(), cache, func(o models.Opportunity) listing.Option {
			return listing.Option{Value: strconv.FormatInt(o.ID, 10), Label: o.Name}
		}),
		"users": users(client, cache),
	}
}

// firstPage offers the first page of a collection. It shares the cache key
// of that collection's screen, so a mutation there refreshes the choices.
func firstPage[T any](res *api.Resource[T], cache *query.Cache, option func(T) listing.Option) listing.OptionsFunc {
	params := api.ListParams{Page: 1, Ordering: "id"}
	return func(ctx context.Context) ([]listing.Option, error) {
		page, err := query.Get(ctx, cache, res.ListKey(params), func(ctx context.Context) (*models.Page[T], error) {
			return res.List(ctx, params)
		})
		if err != nil {
			return nil, err
		}
		opts := make([]listing.Option, 0, len(page.Results))
		for _, item := range page.Results {
			opts = append(opts, option(item))
		}
		return opts, nil
	}
}

func users(client *api.Client, cache *query.Cache) listing.OptionsFunc {
	params := api.ListParams{Ordering: "username"}
	return func(ctx context.Context) ([]listing.Option, error) {
		list, err := query.Get(ctx, cache, client.UsersKey(params), func(ctx context.Context) ([]models.User, error) {
			return client.Users(ctx, params)
		})
		if err != nil {
			return nil, err
		}
		opts := make([]listing.Option, 0, len(list))
		for _, u := range list {
			opts = append(opts, listing.Option{Value: strconv.FormatInt(u.ID, 10), Label: u.FullName()})
		}
		return opts, nil
	}
}

// withOptions attaches option sources to the descriptor's reference fields.
func withOptions[T any](d listing.Descriptor[T], src optionSources) listing.Descriptor[T] {
	fields := make([]listing.Field[T], len(d.Fields))
	copy(fields, d.Fields)
	for i, f := range fields {
		if f.Kind != listing.KindReference || f.Options != nil {
			continue
		}
		if target, ok := references[f.Key]; ok {
			fields[i].Options = src[target]
		}
	}
	d.Fields = fields
	return d
}
