package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value    string
	storedAt time.Time
}

// Memory is a thread-safe in-memory cache with TTL support.
type Memory struct {
	entries map[string]entry
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory cache. A ttl of 0 or less never expires entries.
func NewMemory(ttl time.Duration) *Memory {
	if ttl < 0 {
		ttl = 0
	}
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves a value from the cache.
func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	if c.expired(e) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}

	return e.value, true
}

// Set stores a value in the cache.
func (c *Memory) Set(_ context.Context, key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, storedAt: c.now()}
	return nil
}

// Delete removes a value from the cache.
func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

func (c *Memory) expired(e entry) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl
}

// Verify Memory implements Cache
var _ Cache = (*Memory)(nil)
