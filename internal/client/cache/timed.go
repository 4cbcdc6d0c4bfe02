package cache

import (
	"sync"
	"time"
)

// Entry wraps a cached value with its capture time and owning principal.
type Entry[V any] struct {
	Value      V
	CapturedAt time.Time
	Owner      string
}

// IsExpired reports whether more than ttl has passed since capture.
func (e Entry[V]) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CapturedAt) > ttl
}

// IsFor reports whether the entry was captured for owner.
func (e Entry[V]) IsFor(owner string) bool {
	return e.Owner == owner
}

// TimedCache is a concurrency-safe map of owner-tagged entries. It never
// refreshes or evicts on its own; Get simply reports expired entries as misses.
type TimedCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]Entry[V]
	now   func() time.Time
}

// NewTimedCache creates an empty cache. A nil clock means time.Now.
func NewTimedCache[K comparable, V any](now func() time.Time) *TimedCache[K, V] {
	if now == nil {
		now = time.Now
	}
	return &TimedCache[K, V]{items: make(map[K]Entry[V]), now: now}
}

// Put stores v under key for owner, stamped with the current time.
// An existing entry is overwritten, never merged.
func (c *TimedCache[K, V]) Put(key K, owner string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = Entry[V]{Value: v, CapturedAt: c.now(), Owner: owner}
}

// Get returns the value for key if present, captured for owner and not
// older than ttl.
func (c *TimedCache[K, V]) Get(key K, owner string, ttl time.Duration) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok || !e.IsFor(owner) || e.IsExpired(c.now(), ttl) {
		return zero, false
	}
	return e.Value, true
}

// Peek returns the raw entry regardless of owner or age.
func (c *TimedCache[K, V]) Peek(key K) (Entry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.items[key]
	return e, ok
}

func (c *TimedCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeleteOwner removes every entry captured for owner and returns how many
// were dropped.
func (c *TimedCache[K, V]) DeleteOwner(owner string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.items {
		if e.IsFor(owner) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

func (c *TimedCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]Entry[V])
}

func (c *TimedCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
