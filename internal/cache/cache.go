// Package cache provides a small in-memory TTL cache. It backs document
// inspection results so repeated pdf_info calls against an unchanged file
// skip re-parsing.
package cache

import (
	"sync"
	"time"
)

// Cache maps string keys to values with a fixed time-to-live.
type Cache struct {
	data map[string]entry
	ttl  time.Duration
	mu   sync.RWMutex
}

type entry struct {
	value  any
	stored time.Time
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		data: make(map[string]entry),
		ttl:  ttl,
	}
}

// Get retrieves a value, reporting false for missing or expired keys.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, exists := c.data[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if time.Since(e.stored) > c.ttl {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key, resetting its expiry.
func (c *Cache) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry{value: val, stored: time.Now()}
}
