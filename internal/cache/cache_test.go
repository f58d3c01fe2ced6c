package cache

import (
	"testing"
	"time"
)

// withClock rebinds the cache's clock to a controllable instant
func withClock(c *ResponseCache) *time.Time {
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }
	return &now
}

func TestGetSet(t *testing.T) {
	c := NewResponseCache(5 * time.Second)
	withClock(c)

	if _, ok := c.Get("missing"); ok {
		t.Error("unexpected hit on empty cache")
	}

	c.Set("BINANCE:BTCUSDT_1m", []byte(`{"close":100}`))
	data, ok := c.Get("BINANCE:BTCUSDT_1m")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(data) != `{"close":100}` {
		t.Errorf("got %q", data)
	}
}

func TestExpiry(t *testing.T) {
	c := NewResponseCache(5 * time.Second)
	now := withClock(c)

	c.Set("key", []byte("v"))

	*now = now.Add(4 * time.Second)
	if _, ok := c.Get("key"); !ok {
		t.Error("expected hit before TTL")
	}

	*now = now.Add(2 * time.Second)
	if _, ok := c.Get("key"); ok {
		t.Error("expected miss after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted, len=%d", c.Len())
	}
}

func TestSetRestartsTTL(t *testing.T) {
	c := NewResponseCache(5 * time.Second)
	now := withClock(c)

	c.Set("key", []byte("old"))
	*now = now.Add(4 * time.Second)
	c.Set("key", []byte("new"))
	*now = now.Add(4 * time.Second)

	data, ok := c.Get("key")
	if !ok {
		t.Fatal("expected hit, TTL should restart on Set")
	}
	if string(data) != "new" {
		t.Errorf("got %q, want new", data)
	}
}

func TestClear(t *testing.T) {
	c := NewResponseCache(5 * time.Second)
	withClock(c)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	if n := c.Clear(); n != 2 {
		t.Errorf("cleared: got %d, want 2", n)
	}
	if c.Len() != 0 {
		t.Errorf("len after clear: %d", c.Len())
	}
}

func TestStatus(t *testing.T) {
	c := NewResponseCache(5 * time.Second)
	now := withClock(c)

	c.Set("old", []byte("1"))
	*now = now.Add(6 * time.Second)
	c.Set("fresh", []byte("2"))

	st := c.Status()
	if st.TotalCached != 2 {
		t.Errorf("total: got %d, want 2", st.TotalCached)
	}
	if st.ActiveCaches != 1 || st.ExpiredCaches != 1 {
		t.Errorf("active/expired: got %d/%d, want 1/1", st.ActiveCaches, st.ExpiredCaches)
	}
	if st.CacheTTL != 5 {
		t.Errorf("ttl: got %v, want 5", st.CacheTTL)
	}
	if len(st.CachedKeys) != 2 {
		t.Errorf("keys: %v", st.CachedKeys)
	}
}
