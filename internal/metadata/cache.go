package metadata

import (
	"context"
	"sync"
	"time"

	"movierec/pkg/models"
)

// Cache wraps a Fetcher with a time-bounded per-movie cache.
// Metadata changes rarely, so stale answers inside the TTL are fine.
type Cache struct {
	mu      sync.RWMutex
	next    Fetcher
	ttl     time.Duration
	now     func() time.Time
	entries map[int]cacheEntry
}

type cacheEntry struct {
	details models.MovieDetails
	expires time.Time
}

func NewCache(next Fetcher, ttl time.Duration) *Cache {
	return &Cache{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int]cacheEntry),
	}
}

func (c *Cache) Details(ctx context.Context, movieID int) models.MovieDetails {
	c.mu.RLock()
	e, ok := c.entries[movieID]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expires) {
		return e.details
	}

	d := c.next.Details(ctx, movieID)

	// a fallback means the upstream fetch failed; caching it would pin
	// the placeholder for the full TTL after a transient outage
	if isFallback(d) {
		return d
	}

	c.mu.Lock()
	c.entries[movieID] = cacheEntry{details: d, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return d
}
