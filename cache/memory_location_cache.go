package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/seedlift/seedlift/domain"
)

// MemoryLocationCache implements LocationCache using ttlcache.
type MemoryLocationCache struct {
	cache *ttlcache.Cache[string, *domain.Location]
}

// NewMemoryLocationCache creates an in-memory location cache with
// automatic expiry cleanup.
func NewMemoryLocationCache(defaultTTL time.Duration) *MemoryLocationCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *domain.Location](defaultTTL),
		ttlcache.WithDisableTouchOnHit[string, *domain.Location](),
	)

	go cache.Start()

	return &MemoryLocationCache{cache: cache}
}

// Get implements LocationCache.Get.
func (c *MemoryLocationCache) Get(_ context.Context, ip string) (*domain.Location, bool) {
	item := c.cache.Get(ip)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set implements LocationCache.Set.
func (c *MemoryLocationCache) Set(_ context.Context, ip string, location *domain.Location, ttl time.Duration) {
	c.cache.Set(ip, location, ttl)
}

// Close stops the cleanup goroutine.
func (c *MemoryLocationCache) Close() error {
	c.cache.Stop()
	return nil
}

var _ LocationCache = (*MemoryLocationCache)(nil)
