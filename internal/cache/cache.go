// Package cache provides a small in-process TTL cache used by the
// trends, search, and scorer layers. Entries are never evicted except
// on overwrite; key cardinality is naturally bounded upstream.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// Cache is a concurrency-safe map with per-cache TTL. An entry is fresh
// while now - insertedAt < TTL. Concurrent writers racing on the same
// key are last-write-wins.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[K]entry[V]

	// now is overridable in tests.
	now func() time.Time
}

// New creates a cache whose entries expire after ttl.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:     ttl,
		entries: make(map[K]entry[V]),
		now:     time.Now,
	}
}

// Get returns the value for key if present and still fresh.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.insertedAt) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetStale returns the value for key even if it has expired. Used as a
// last-good fallback when the upstream is rate limited.
func (c *Cache[K, V]) GetStale(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its insertion time.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, insertedAt: c.now()}
}

// Len returns the number of entries, fresh or stale.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
