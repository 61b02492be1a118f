package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/coltype/internal/model"
)

// MemoryCache implements in-memory caching with expiry
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a profile from the cache
func (c *MemoryCache) Get(key string) (*model.Profile, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(*model.Profile), true
	}
	return nil, false
}

// Set stores a profile in the cache with the given TTL
func (c *MemoryCache) Set(key string, value *model.Profile, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}
