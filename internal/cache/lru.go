package cache

import (
	"sync"
	"time"
)

// LRUCache holds at most maxSize entries, each valid for ttl. When full, the
// entry read or written longest ago makes room for the new one.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*entry[T]
	clock   uint64
}

type entry[T any] struct {
	value     T
	expiresAt time.Time
	used      uint64
}

func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &LRUCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry[T], maxSize),
	}
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	c.clock++
	e.used = c.clock
	return e.value, true
}

func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.clock++
	c.entries[key] = &entry[T]{value: value, expiresAt: c.now().Add(c.ttl), used: c.clock}
}

// evictOldest drops the least recently used entry. Caches here hold a
// handful of years, so a scan is enough. Callers hold mu.
func (c *LRUCache[T]) evictOldest() {
	var oldest string
	var lowest uint64
	for k, e := range c.entries {
		if oldest == "" || e.used < lowest {
			oldest, lowest = k, e.used
		}
	}
	delete(c.entries, oldest)
}

// Purge drops every entry.
func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// CleanExpired removes expired entries and reports how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
