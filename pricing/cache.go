package pricing

import (
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/fxtools/market"
)

const DefaultCacheDuration = 60 * time.Second

type cacheEntry struct {
	quote     market.Quote
	expiresAt time.Time
}

// Cache memoizes quotes for a fixed duration. Expired entries are not
// swept; they are ignored on read and overwritten by the next Put.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheDuration
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     now,
	}
}

// Get returns the quote for key, flagged as cached, while it is fresh.
func (c *Cache) Get(key string) (market.Quote, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		return market.Quote{}, false
	}
	return e.quote.AsCached(), true
}

// Put overwrites key unconditionally. Freshness is measured from the
// quote's FetchedAt.
func (c *Cache) Put(key string, q market.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{quote: q, expiresAt: q.FetchedAt.Add(c.ttl)}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len counts entries including expired ones not yet overwritten.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Cache) TTL() time.Duration { return c.ttl }
