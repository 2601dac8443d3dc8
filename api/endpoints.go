// ABOUTME: Typed accessors for every sales collection exposed by the backend
// ABOUTME: Mirrors the router registrations under /api/v1/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/harperreed/salescrm/models"
	"github.com/harperreed/salescrm/query"
)

func (c *Client) Accounts() *Resource[models.Account] {
	return NewResource[models.Account](c, "accounts")
}

func (c *Client) Contacts() *Resource[models.Contact] {
	return NewResource[models.Contact](c, "contacts")
}

func (c *Client) Leads() *Resource[models.Lead] {
	return NewResource[models.Lead](c, "leads")
}

func (c *Client) Opportunities() *Resource[models.Opportunity] {
	return NewResource[models.Opportunity](c, "opportunities")
}

func (c *Client) Tasks() *Resource[models.Task] {
	return NewResource[models.Task](c, "tasks")
}

func (c *Client) Interactions() *Resource[models.Interaction] {
	return NewResource[models.Interaction](c, "interactions")
}

func (c *Client) Products() *Resource[models.Product] {
	return NewResource[models.Product](c, "products")
}

func (c *Client) Quotes() *Resource[models.Quote] {
	return NewResource[models.Quote](c, "quotes")
}

// UsersKey builds the cache key for a users list.
func (c *Client) UsersKey(p ListParams) query.Key {
	return NewResource[models.User](c, "users").ListKey(p)
}

// Users lists the organization's users. The endpoint is not paginated, so
// p.Page is ignored.
func (c *Client) Users(ctx context.Context, p ListParams) ([]models.User, error) {
	p.Page = 0
	key := c.UsersKey(p)

	var users []models.User
	if err := c.do(ctx, http.MethodGet, key.Resource, key.Values(), nil, &users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
