package cache

import (
	"context"
	"time"

	"github.com/seedlift/seedlift/domain"
)

// LocationCache caches IP-geolocation lookups. The geolocation provider is
// slow (a network round-trip per request would sit on the refresh path),
// so resolved fingerprints are kept per IP for a bounded time.
type LocationCache interface {
	Get(ctx context.Context, ip string) (*domain.Location, bool)
	Set(ctx context.Context, ip string, location *domain.Location, ttl time.Duration)
}
