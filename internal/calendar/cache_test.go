package calendar

import (
	"testing"
	"time"
)

func TestCacheMissOnEmpty(t *testing.T) {
	c := NewCache(DefaultTTL)
	if _, ok := c.Get("https://example.com/cal.ics"); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestCacheHitWithinTTL(t *testing.T) {
	c := NewCache(DefaultTTL)
	c.Put("https://example.com/cal.ics", "BEGIN:VCALENDAR")

	got, ok := c.Get("https://example.com/cal.ics")
	if !ok || got != "BEGIN:VCALENDAR" {
		t.Fatalf("Get = (%q, %v), want fresh hit", got, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	current := base

	c := NewCache(DefaultTTL)
	c.now = func() time.Time { return current }
	c.Put("u", "body")

	current = base.Add(4*time.Minute + 59*time.Second)
	if _, ok := c.Get("u"); !ok {
		t.Error("entry should still be fresh just under the TTL")
	}

	current = base.Add(5 * time.Minute)
	if _, ok := c.Get("u"); ok {
		t.Error("entry should be stale exactly at the TTL")
	}

	current = base.Add(6 * time.Minute)
	if _, ok := c.Get("u"); ok {
		t.Error("entry should be stale past the TTL")
	}
}

func TestCacheOverwriteResetsClock(t *testing.T) {
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	current := base

	c := NewCache(DefaultTTL)
	c.now = func() time.Time { return current }
	c.Put("u", "old")

	current = base.Add(4 * time.Minute)
	c.Put("u", "new")

	current = base.Add(8 * time.Minute)
	got, ok := c.Get("u")
	if !ok || got != "new" {
		t.Fatalf("Get = (%q, %v), want refreshed entry", got, ok)
	}
}

func TestNewCacheDefaultTTL(t *testing.T) {
	c := NewCache(0)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
	c = NewCache(-time.Second)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}
