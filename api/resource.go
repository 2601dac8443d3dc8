// ABOUTME: Generic typed CRUD access to one REST collection
// ABOUTME: Provides list, retrieve, create, partial update, destroy and the list cache-key builder
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/harperreed/salescrm/models"
	"github.com/harperreed/salescrm/query"
)

// ListParams shapes one list request.
type ListParams struct {
	Page     int
	Ordering string
	Search   string
}

// Resource is one collection under /api/v1/.
type Resource[T any] struct {
	client *Client
	name   string
}

// NewResource binds the collection name (e.g. "leads") to a client.
func NewResource[T any](c *Client, name string) *Resource[T] {
	return &Resource[T]{client: c, name: name}
}

// Name returns the collection name.
func (r *Resource[T]) Name() string {
	return r.name
}

// Path returns the collection path, e.g. "/api/v1/leads/".
func (r *Resource[T]) Path() string {
	return "/api/v1/" + r.name + "/"
}

func (r *Resource[T]) itemPath(id int64) string {
	return r.Path() + strconv.FormatInt(id, 10) + "/"
}

// ListKey builds the cache key for a list request. The same key is used to
// invalidate the list after a mutation.
func (r *Resource[T]) ListKey(p ListParams) query.Key {
	return query.Key{
		Resource: r.Path(),
		Page:     p.Page,
		Ordering: p.Ordering,
		Search:   p.Search,
	}
}

// List fetches one page.
func (r *Resource[T]) List(ctx context.Context, p ListParams) (*models.Page[T], error) {
	var page models.Page[T]
	if err := r.client.do(ctx, http.MethodGet, r.Path(), r.ListKey(p).Values(), nil, &page); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.name, err)
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	return &page, nil
}

// Retrieve fetches one record. A missing record matches ErrNotFound.
func (r *Resource[T]) Retrieve(ctx context.Context, id int64) (*T, error) {
	if id <= 0 {
		return nil, fmt.Errorf("failed to get %s %d: %w", r.name, id, ErrNotFound)
	}
	var item T
	if err := r.client.do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &item); err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", r.name, id, err)
	}
	return &item, nil
}

// Create posts a new record and returns the backend's copy.
func (r *Resource[T]) Create(ctx context.Context, payload any) (*T, error) {
	var item T
	if err := r.client.do(ctx, http.MethodPost, r.Path(), nil, payload, &item); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.name, err)
	}
	return &item, nil
}

// PartialUpdate patches only the fields present in payload.
func (r *Resource[T]) PartialUpdate(ctx context.Context, id int64, payload any) (*T, error) {
	var item T
	if err := r.client.do(ctx, http.MethodPatch, r.itemPath(id), nil, payload, &item); err != nil {
		return nil, fmt.Errorf("failed to update %s %d: %w", r.name, id, err)
	}
	return &item, nil
}

// Destroy deletes a record.
func (r *Resource[T]) Destroy(ctx context.Context, id int64) error {
	if err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", r.name, id, err)
	}
	return nil
}
