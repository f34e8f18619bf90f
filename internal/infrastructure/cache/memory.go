package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// cacheItem is a single stored search batch with expiration
type cacheItem struct {
	value      *domain.CachedSearch
	expiration time.Time
}

// Memory is a thread-safe in-memory search cache with TTL support. It is the
// default backend; Redis is available for multi-instance deployments.
type Memory struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemory creates a new in-memory cache and starts its cleanup loop.
func NewMemory() *Memory {
	c := &Memory{
		data: make(map[string]cacheItem),
	}

	// Remove expired entries every 10 minutes.
	go c.cleanupExpired()

	return c
}

// Get retrieves a cached search batch; expired entries count as misses.
func (c *Memory) Get(ctx context.Context, key string) (*domain.CachedSearch, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}
	if time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.value, nil
}

// Set stores a search batch under the product hash with the given TTL.
func (c *Memory) Set(ctx context.Context, key string, value *domain.CachedSearch, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes one entry.
func (c *Memory) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Clear removes all entries. Backs the host's CLEAR_CACHE request.
func (c *Memory) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]cacheItem)
	return nil
}

// Size returns the current number of entries (for debugging/monitoring)
func (c *Memory) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *Memory) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
