// Package cache provides the bounded, time-limited store of computed
// search results.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/utafrali/catalog-search/internal/domain"
)

// Defaults used when no option overrides them.
const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 100
)

type entry struct {
	result   *domain.SearchResult
	storedAt time.Time
}

// Cache maps request keys to search results. Entries that have reached the TTL
// are never returned. When the cache is full and a new key arrives,
// expired entries are swept first; if that frees nothing the least
// recently used entry is dropped.
//
// All methods are safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	lru        *simplelru.LRU[Key, entry]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	// gen advances on every Clear.
	gen uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the entry lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries sets the entry ceiling. Non-positive values are ignored.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:        DefaultTTL,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	// NewLRU only fails for a non-positive size, which the options rule out.
	c.lru, _ = simplelru.NewLRU[Key, entry](c.maxEntries, nil)
	return c
}

// TTL returns the configured entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the live result stored under key. An expired entry is
// removed and reported as a miss.
func (c *Cache) Get(key Key) (*domain.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		cacheMisses.Inc()
		return nil, false
	}
	if c.expired(e) {
		c.lru.Remove(key)
		cacheEvictions.WithLabelValues("expired").Inc()
		cacheEntries.Set(float64(c.lru.Len()))
		cacheMisses.Inc()
		return nil, false
	}

	cacheHits.Inc()
	return e.result, true
}

// Generation identifies the current contents epoch. It changes whenever
// the cache is cleared.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Set stores result under key, replacing any previous entry.
func (c *Cache) Set(key Key, result *domain.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, result)
}

// SetIfGeneration stores result only if the cache has not been cleared
// since gen was read. It reports whether the result was stored.
func (c *Cache) SetIfGeneration(key Key, result *domain.SearchResult, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.setLocked(key, result)
	return true
}

func (c *Cache) setLocked(key Key, result *domain.SearchResult) {
	if !c.lru.Contains(key) && c.lru.Len() >= c.maxEntries {
		c.sweepLocked()
	}
	if c.lru.Add(key, entry{result: result, storedAt: c.now()}) {
		cacheEvictions.WithLabelValues("capacity").Inc()
	}
	cacheEntries.Set(float64(c.lru.Len()))
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
	c.gen++
	cacheEntries.Set(0)
}

// Stats reports how many entries are held and how many of them are past
// their TTL but not yet removed.
func (c *Cache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := domain.CacheStats{TTL: c.ttl}
	for _, k := range c.lru.Keys() {
		e, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		stats.Total++
		if c.expired(e) {
			stats.Expired++
		} else {
			stats.Active++
		}
	}
	return stats
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// sweepLocked removes every expired entry. c.mu must be held.
func (c *Cache) sweepLocked() {
	for _, k := range c.lru.Keys() {
		if e, ok := c.lru.Peek(k); ok && c.expired(e) {
			c.lru.Remove(k)
			cacheEvictions.WithLabelValues("expired").Inc()
		}
	}
}

// expired reports whether the entry has reached its TTL.
func (c *Cache) expired(e entry) bool {
	return !c.now().Before(e.storedAt.Add(c.ttl))
}
