package cache

import (
	"strconv"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10)

	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}

	_, ok = c.Get("nonexistent")
	if ok {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[string, int](10)

	c.Set("key1", 42)

	if !c.Delete("key1") {
		t.Error("expected Delete to return true for existing key")
	}
	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be deleted")
	}
	if c.Delete("nonexistent") {
		t.Error("expected Delete to return false for non-existing key")
	}
}

func TestCacheClear(t *testing.T) {
	c := New[string, int](10)

	c.Set("key1", 1)
	c.Set("key2", 2)

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d entries", c.Len())
	}
}

func TestCacheEviction(t *testing.T) {
	c := New[string, int](4)

	for i := 0; i < 8; i++ {
		c.Set(strconv.Itoa(i), i)
	}
	if c.Len() > 4 {
		t.Errorf("expected at most 4 entries after eviction, got %d", c.Len())
	}

	// The most recent insertion must survive.
	if _, ok := c.Get("7"); !ok {
		t.Error("most recent entry was evicted")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](4)

	for i := 0; i < 4; i++ {
		c.Set(strconv.Itoa(i), i)
	}
	// Touch "0" so "1" becomes the oldest.
	c.Get("0")
	c.Set("4", 4) // Over limit, triggers eviction.

	if _, ok := c.Get("0"); !ok {
		t.Error("recently touched entry was evicted")
	}
}

func TestCacheStats(t *testing.T) {
	c := New[string, int](10)

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 2 {
		t.Errorf("Hits = %d, want 2", s.Hits)
	}
	if s.Misses != 1 {
		t.Errorf("Misses = %d, want 1", s.Misses)
	}
	if got := s.HitRate; got < 0.66 || got > 0.67 {
		t.Errorf("HitRate = %v, want ~0.667", got)
	}
	if s.Len != 1 {
		t.Errorf("Len = %d, want 1", s.Len)
	}
}

func TestCacheUnlimited(t *testing.T) {
	c := New[int, int](0)
	for i := 0; i < 1000; i++ {
		c.Set(i, i)
	}
	if c.Len() != 1000 {
		t.Errorf("unlimited cache evicted entries: len = %d", c.Len())
	}
}
