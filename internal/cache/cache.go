// Package cache stores whole rendered responses for a short TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emilythestrangee/blogfeed/backend/internal/logger"
	"github.com/emilythestrangee/blogfeed/backend/internal/metrics"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a key/value store with per-key expiry. Implementations must make
// single-key reads and writes atomic.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

const (
	// IndexPrefix namespaces the global feed pages.
	IndexPrefix = "index_page"
	// DefaultTTL is how long a cached global feed page stays fresh.
	DefaultTTL = 20 * time.Second
)

// PageCache holds rendered global feed pages, one slot per page number.
// Writes to posts do not invalidate it; staleness is bounded by the TTL.
type PageCache struct {
	store  Store
	prefix string
	ttl    time.Duration
}

// NewPageCache caches pages in store for ttl. A non-positive ttl falls back
// to DefaultTTL, so it cannot turn caching off. config.Validate rejects a
// non-positive CACHE_TTL at startup.
func NewPageCache(store Store, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PageCache{store: store, prefix: IndexPrefix, ttl: ttl}
}

func (c *PageCache) Key(page int) string {
	return fmt.Sprintf("%s:%d", c.prefix, page)
}

// Get returns the cached body for page. Store failures count as misses.
func (c *PageCache) Get(ctx context.Context, page int) ([]byte, bool) {
	body, err := c.store.Get(ctx, c.Key(page))
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return body, true
	case errors.Is(err, ErrMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.Log.WithError(err).Warn("page cache read failed")
	}
	return nil, false
}

// Put stores body for page for the configured TTL.
func (c *PageCache) Put(ctx context.Context, page int, body []byte) {
	if err := c.store.Set(ctx, c.Key(page), body, c.ttl); err != nil {
		logger.Log.WithError(err).Warn("page cache write failed")
	}
}

// Clear drops every cached page.
func (c *PageCache) Clear(ctx context.Context) error {
	return c.store.DeletePrefix(ctx, c.prefix+":")
}

func (c *PageCache) TTL() time.Duration {
	return c.ttl
}
