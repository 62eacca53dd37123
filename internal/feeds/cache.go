// Package feeds proxies the weather and news APIs shown on the desktop,
// caching each upstream response for a fixed time.
package feeds

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Result is a cached value. Stale is set when the value outlived its TTL and
// was served because a refresh failed.
type Result[T any] struct {
	Value     T         `json:"-"`
	FetchedAt time.Time `json:"fetchedAt"`
	Stale     bool      `json:"stale"`
}

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cache keeps the latest value per key. Concurrent refreshes of one key
// share a single upstream call.
type Cache[T any] struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[string]entry[T]
	group   singleflight.Group
	now     func() time.Time
}

func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
		now:     time.Now,
	}
}

// Get returns the cached value for key while it is fresh, otherwise calls
// fetch. When fetch fails and an old value exists, the old value is returned
// marked stale.
func (c *Cache[T]) Get(ctx context.Context, key string, fetch func(context.Context) (T, error)) (Result[T], error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return Result[T]{Value: e.value, FetchedAt: e.fetchedAt}, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		fresh := entry[T]{value: value, fetchedAt: c.now()}
		c.mu.Lock()
		c.entries[key] = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		if ok {
			return Result[T]{Value: e.value, FetchedAt: e.fetchedAt, Stale: true}, nil
		}
		var zero Result[T]
		return zero, err
	}

	fresh := v.(entry[T])
	return Result[T]{Value: fresh.value, FetchedAt: fresh.fetchedAt}, nil
}

// Len returns the number of cached keys.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
