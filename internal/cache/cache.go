package cache

import (
	"sync"
	"time"
)

// entry is one cached response with its insertion time
type entry struct {
	data     []byte
	storedAt time.Time
}

// ResponseCache is a TTL cache for serialized responses keyed by
// symbol+timeframe. Staleness, not correctness, is the only risk, but
// access is still mutex-guarded so readers never observe partial writes.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewResponseCache creates a cache whose entries expire after ttl
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached bytes for key if present and not expired
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Set stores bytes under key, restarting its TTL
func (c *ResponseCache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{data: data, storedAt: c.now()}
}

// Clear drops every entry and returns how many were removed
func (c *ResponseCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	return n
}

// Status describes the cache contents for the status endpoint
type Status struct {
	TotalCached   int      `json:"total_cached"`
	ActiveCaches  int      `json:"active_caches"`
	ExpiredCaches int      `json:"expired_caches"`
	CacheTTL      float64  `json:"cache_ttl_seconds"`
	CachedKeys    []string `json:"cached_keys"`
}

// Status reports active vs expired entries without evicting anything
func (c *ResponseCache) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		TotalCached: len(c.entries),
		CacheTTL:    c.ttl.Seconds(),
		CachedKeys:  make([]string, 0, len(c.entries)),
	}
	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.storedAt) < c.ttl {
			st.ActiveCaches++
		} else {
			st.ExpiredCaches++
		}
		st.CachedKeys = append(st.CachedKeys, key)
	}

	return st
}

// Len returns the number of entries currently held
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
