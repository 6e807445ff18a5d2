package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seedlift/seedlift/cache"
	"github.com/seedlift/seedlift/domain"
	"github.com/seedlift/seedlift/internal/metrics"
)

const (
	lookupTimeout   = 6 * time.Second
	defaultCacheTTL = time.Hour

	// notFound is the provider's in-band marker for unknown fields.
	notFound = "Not found"
)

// Locator resolves an IP address to a location fingerprint via an external
// geolocation API. Lookups degrade to an empty fingerprint on any failure
// or timeout; they never fail a request.
type Locator struct {
	client   *http.Client
	baseURL  string
	cache    cache.LocationCache
	cacheTTL time.Duration
}

// NewLocator creates a Locator. baseURL is the provider endpoint without a
// trailing slash; store may be nil to disable caching.
func NewLocator(baseURL string, store cache.LocationCache) *Locator {
	return &Locator{
		client:   &http.Client{Timeout: lookupTimeout},
		baseURL:  baseURL,
		cache:    store,
		cacheTTL: defaultCacheTTL,
	}
}

// geoResponse mirrors the provider's JSON payload.
type geoResponse struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	City        string `json:"city"`
	State       string `json:"state"`
	Postal      string `json:"postal"`
}

// Lookup resolves ip to a location fingerprint.
func (l *Locator) Lookup(ctx context.Context, ip string) *domain.Location {
	if ip == "" {
		return &domain.Location{}
	}

	if l.cache != nil {
		if location, ok := l.cache.Get(ctx, ip); ok {
			return location
		}
	}

	location, err := l.fetch(ctx, ip)
	if err != nil {
		metrics.GeolocationFailuresTotal.Inc()
		log.Warn().Err(err).Str("ip", ip).Msg("Geolocation lookup failed, using empty fingerprint")
		return &domain.Location{}
	}

	if l.cache != nil {
		l.cache.Set(ctx, ip, location, l.cacheTTL)
	}
	return location
}

func (l *Locator) fetch(ctx context.Context, ip string) (*domain.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/"+ip, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation api returned status %d", resp.StatusCode)
	}

	var payload geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &domain.Location{
		CountryCode: cleanField(payload.CountryCode),
		CountryName: cleanField(payload.CountryName),
		City:        cleanField(payload.City),
		State:       cleanField(payload.State),
		Postal:      cleanField(payload.Postal),
	}, nil
}

// cleanField drops the provider's "Not found" marker.
func cleanField(v string) string {
	if v == notFound {
		return ""
	}
	return v
}
