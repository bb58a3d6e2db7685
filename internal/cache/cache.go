// Package cache is an in-memory TTL cache keyed by structured signatures.
// Values expire lazily: an expired entry is evicted by the read that finds
// it. There is no size bound.
package cache

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type item struct {
	key      Key
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (it item) expired(now time.Time) bool {
	return now.Sub(it.storedAt) > it.ttl
}

// Cache is safe for concurrent use. Construct it with New and share the
// pointer with whoever needs it.
type Cache struct {
	mu    sync.Mutex
	items map[string]item
	now   func() time.Time

	// gen is bumped by every Clear and Invalidate. Loads started under an
	// older generation do not store their result.
	gen   uint64
	group singleflight.Group
}

type Option func(*Cache)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(opts ...Option) *Cache {
	c := &Cache{items: make(map[string]item), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Set stores value under key until ttl has elapsed.
func (c *Cache) Set(key Key, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key.String()] = item{key: key, value: value, storedAt: c.now(), ttl: ttl}
}

func (c *Cache) setIfGeneration(key Key, value any, ttl time.Duration, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.items[key.String()] = item{key: key, value: value, storedAt: c.now(), ttl: ttl}
	return true
}

// Get returns the value for key if it is present and unexpired.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := key.String()
	it, ok := c.items[s]
	if !ok {
		missesTotal.WithLabelValues(string(key.Kind)).Inc()
		return nil, false
	}
	if it.expired(c.now()) {
		delete(c.items, s)
		evictionsTotal.WithLabelValues(string(key.Kind)).Inc()
		missesTotal.WithLabelValues(string(key.Kind)).Inc()
		return nil, false
	}
	hitsTotal.WithLabelValues(string(key.Kind)).Inc()
	return it.value, true
}

// Clear drops everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for s, it := range c.items {
		evictionsTotal.WithLabelValues(string(it.key.Kind)).Inc()
		delete(c.items, s)
	}
}

// Invalidate removes every entry matched by sel and reports how many
// were removed.
func (c *Cache) Invalidate(sel Selector) int {
	return c.remove(func(it item) bool { return sel.matches(it.key) })
}

// InvalidatePattern removes every entry whose textual signature contains
// substr. Prefer Invalidate: "entries:u1" also matches "all-entries:u1".
func (c *Cache) InvalidatePattern(substr string) int {
	return c.remove(func(it item) bool { return strings.Contains(it.key.String(), substr) })
}

func (c *Cache) remove(match func(item) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	n := 0
	for s, it := range c.items {
		if match(it) {
			delete(c.items, s)
			evictionsTotal.WithLabelValues(string(it.key.Kind)).Inc()
			n++
		}
	}
	return n
}

// Len counts stored entries, including expired ones not yet evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}
