package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seedlift/seedlift/cache"
	"github.com/seedlift/seedlift/domain"
)

// LocationCache implements cache.LocationCache backed by Redis, for
// deployments running more than one API instance.
type LocationCache struct {
	client *redis.Client
	prefix string
}

// NewLocationCache creates a new Redis-backed location cache.
func NewLocationCache(client *redis.Client, prefix string) *LocationCache {
	return &LocationCache{client: client, prefix: prefix}
}

func (c *LocationCache) key(ip string) string {
	return fmt.Sprintf("%s:geo:%s", c.prefix, ip)
}

// Get retrieves a cached location. Any Redis or decode error reads as a
// cache miss.
func (c *LocationCache) Get(ctx context.Context, ip string) (*domain.Location, bool) {
	payload, err := c.client.Get(ctx, c.key(ip)).Bytes()
	if err != nil {
		return nil, false
	}

	var location domain.Location
	if err := json.Unmarshal(payload, &location); err != nil {
		return nil, false
	}
	return &location, true
}

// Set stores a location with the given TTL. Failures are ignored; the
// cache is an optimization, not a source of truth.
func (c *LocationCache) Set(ctx context.Context, ip string, location *domain.Location, ttl time.Duration) {
	payload, err := json.Marshal(location)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(ip), payload, ttl)
}

var _ cache.LocationCache = (*LocationCache)(nil)
