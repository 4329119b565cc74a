package calendar

import (
	"sync"
	"time"
)

// DefaultTTL is how long a fetched feed body stays fresh.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	content   string
	fetchedAt time.Time
}

// Cache holds raw feed bodies keyed by source URL. Entries are never evicted,
// only overwritten on refetch: a stale entry simply stops being returned.
// The set of feed URLs is expected to stay small, so unbounded growth is an
// accepted trade-off.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCache creates a feed cache. A non-positive ttl falls back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached body for url if it is still fresh.
func (c *Cache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok || !c.valid(entry) {
		return "", false
	}
	return entry.content, true
}

// Put stores a freshly fetched body for url, replacing any previous entry.
func (c *Cache) Put(url, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = cacheEntry{content: content, fetchedAt: c.now()}
}

func (c *Cache) valid(entry cacheEntry) bool {
	return c.now().Sub(entry.fetchedAt) < c.ttl
}
