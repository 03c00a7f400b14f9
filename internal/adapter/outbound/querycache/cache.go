// Package querycache stores fetched API results keyed by resource identity.
//
// It is the client-side analog of a query cache: reads go through
// GetOrFetch, mutations and push events invalidate keys, and the next read
// of an invalidated key refetches. Storage is a TTL'd LRU; concurrent
// fetches of the same key are deduplicated with singleflight.
package querycache

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long an entry stays fresh without explicit invalidation.
const DefaultTTL = 30 * time.Second

// DefaultMaxEntries bounds cache memory.
const DefaultMaxEntries = 512

type entry struct {
	data      any
	fetchedAt time.Time
	stale     bool
}

// Cache is a TTL'd, invalidation-aware result cache. Safe for concurrent use.
type Cache struct {
	lru    *expirable.LRU[string, entry]
	group  singleflight.Group
	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*cacheConfig)

type cacheConfig struct {
	ttl        time.Duration
	maxEntries int
	logger     *slog.Logger
}

// WithTTL sets the freshness window for cached entries.
func WithTTL(d time.Duration) Option {
	return func(c *cacheConfig) { c.ttl = d }
}

// WithMaxEntries bounds the number of cached entries.
func WithMaxEntries(n int) Option {
	return func(c *cacheConfig) { c.maxEntries = n }
}

// WithLogger sets the cache logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *cacheConfig) { c.logger = l }
}

// New creates a Cache.
func New(opts ...Option) *Cache {
	cfg := cacheConfig{
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache{
		lru:    expirable.NewLRU[string, entry](cfg.maxEntries, nil, cfg.ttl),
		logger: cfg.logger,
	}
}

// GetOrFetch returns the cached value for key, fetching it when the entry is
// missing or stale. Concurrent callers for the same key share one fetch.
// A failed fetch leaves any stale entry in place so live views can keep
// rendering the last good data.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if e, ok := c.lru.Get(key); ok && !e.stale {
		return e.data, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have just stored it.
		if e, ok := c.lru.Get(key); ok && !e.stale {
			return e.data, nil
		}
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, entry{data: data, fetchedAt: time.Now()})
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Peek returns the cached value without fetching. stale reports whether the
// entry has been invalidated; callers doing stale-while-revalidate can
// render it anyway and refetch in the background.
func (c *Cache) Peek(key string) (data any, ok, stale bool) {
	e, ok := c.lru.Peek(key)
	if !ok {
		return nil, false, false
	}
	return e.data, true, e.stale
}

// Invalidate marks the entry for key stale. A missing key is a no-op.
func (c *Cache) Invalidate(key string) {
	e, ok := c.lru.Peek(key)
	if !ok {
		return
	}
	e.stale = true
	c.lru.Add(key, e)
	c.logger.Debug("cache entry invalidated", "key", key)
}

// InvalidatePrefix marks every entry under the resource prefix stale.
// "session" invalidates "session:<id>" entries but not "sessions:<clubID>".
func (c *Cache) InvalidatePrefix(prefix string) {
	for _, key := range c.lru.Keys() {
		if MatchesPrefix(key, prefix) {
			c.Invalidate(key)
		}
	}
}

// Clear drops every entry. Used on logout so no data leaks across accounts.
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Len returns the number of cached entries, fresh or stale.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Fetch is a typed wrapper over Cache.GetOrFetch.
func Fetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
