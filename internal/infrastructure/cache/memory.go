package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/eirinkan/Desire-Hunter/internal/domain"
	"github.com/eirinkan/Desire-Hunter/internal/metrics"
)

// DefaultCleanupInterval is how often expired hunt results are swept
const DefaultCleanupInterval = 10 * time.Minute

// cacheItem holds a serialized hunt result with its expiration
type cacheItem struct {
	payload    []byte
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache of hunt results with TTL support.
// Results are stored serialized so callers never share slices with the cache.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	done  chan struct{}
	once  sync.Once
}

// NewMemoryCache creates a new in-memory cache and starts its sweeper
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	cache := &MemoryCache{
		data: make(map[string]cacheItem),
		done: make(chan struct{}),
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get retrieves a hunt result from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.HuntResult, error) {
	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists || time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}

	var result domain.HuntResult
	if err := json.Unmarshal(item.payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// Set stores a hunt result in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value *domain.HuntResult, ttl time.Duration) error {
	if value == nil {
		return fmt.Errorf("cannot cache nil result for key %q", key)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		payload:    payload,
		expiration: time.Now().Add(ttl),
	}
	metrics.SetCacheEntries(len(c.data))

	return nil
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (c *MemoryCache) Stop() {
	c.once.Do(func() { close(c.done) })
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.removeExpired(time.Now())
		}
	}
}

func (c *MemoryCache) removeExpired(now time.Time) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, item := range c.data {
		if now.After(item.expiration) {
			delete(c.data, key)
		}
	}
	metrics.SetCacheEntries(len(c.data))
}
