// ABOUTME: Keyed fetch cache with per-key de-duplication and invalidation
// ABOUTME: Serves repeated reads from memory and lets mutations force an authoritative re-fetch
package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for one key from the backend.
type FetchFunc func(ctx context.Context) (any, error)

// FetchTimeout bounds a shared fetch. The fetch outlives the cancellation of
// the caller that started it, since other callers may have joined it.
const FetchTimeout = 30 * time.Second

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache holds the last successful result per key. It never merges results
// from different keys and never patches values locally.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	versions map[string]uint64
	group    singleflight.Group
	now      func() time.Time
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		versions: make(map[string]uint64),
		now:      time.Now,
	}
}

// Fetch returns the cached value for key, or calls fn once for all concurrent
// callers asking for the same key. Results of a call started before an
// Invalidate are returned to their callers but not stored.
func (c *Cache) Fetch(ctx context.Context, key string, fn FetchFunc) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	return c.load(ctx, key, fn)
}

// Revalidate drops key and fetches it again. An in-flight call for the same
// key is superseded rather than joined, so the result reflects the mutation
// that triggered the refresh.
func (c *Cache) Revalidate(ctx context.Context, key string, fn FetchFunc) (any, error) {
	c.Invalidate(key)
	return c.load(ctx, key, fn)
}

// Invalidate drops the cached value for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.versions[key]++
	c.mu.Unlock()
	c.group.Forget(key)
}

// InvalidatePrefix drops every key that starts with prefix, e.g. all pages of a resource.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	var keys []string
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		delete(c.entries, key)
		c.versions[key]++
	}
	c.mu.Unlock()

	for _, key := range keys {
		c.group.Forget(key)
	}
}

// Peek returns the cached value without fetching.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, ok
}

// Len reports the number of cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) load(ctx context.Context, key string, fn FetchFunc) (any, error) {
	c.mu.Lock()
	version := c.versions[key]
	c.mu.Unlock()

	ch := c.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), FetchTimeout)
		defer cancel()

		value, err := fn(shared)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.versions[key] == version {
			c.entries[key] = entry{value: value, fetchedAt: c.now()}
		}
		c.mu.Unlock()
		return value, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get is a typed wrapper around Fetch.
func Get[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	return typed[T](c.Fetch(ctx, key.String(), func(ctx context.Context) (any, error) { return fn(ctx) }))
}

// Refresh is a typed wrapper around Revalidate.
func Refresh[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	return typed[T](c.Revalidate(ctx, key.String(), func(ctx context.Context) (any, error) { return fn(ctx) }))
}

// ErrType is returned when a cached value has a different type than requested,
// which means two callers used one key for different resources.
var ErrType = errors.New("cached value has unexpected type")

func typed[T any](v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, ErrType
	}
	return t, nil
}
