package fingerprint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedlift/seedlift/cache"
)

func TestLocatorLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves and cleans provider fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/203.0.113.7", r.URL.Path)
			w.Write([]byte(`{"country_code":"US","country_name":"United States","city":"Chicago","state":"Not found","postal":"Not found"}`))
		}))
		defer server.Close()

		location := NewLocator(server.URL, nil).Lookup(ctx, "203.0.113.7")
		require.NotNil(t, location)
		assert.Equal(t, "US", location.CountryCode)
		assert.Equal(t, "Chicago", location.City)
		assert.Empty(t, location.State)
		assert.Empty(t, location.Postal)
	})

	t.Run("provider failure degrades to empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		location := NewLocator(server.URL, nil).Lookup(ctx, "203.0.113.7")
		require.NotNil(t, location)
		assert.Empty(t, location.CountryCode)
	})

	t.Run("unreachable provider degrades to empty", func(t *testing.T) {
		location := NewLocator("http://127.0.0.1:1", nil).Lookup(ctx, "203.0.113.7")
		require.NotNil(t, location)
		assert.Empty(t, location.CountryCode)
	})

	t.Run("empty ip skips the provider entirely", func(t *testing.T) {
		location := NewLocator("http://127.0.0.1:1", nil).Lookup(ctx, "")
		require.NotNil(t, location)
		assert.Empty(t, location.CountryCode)
	})

	t.Run("repeat lookups hit the cache", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write([]byte(`{"country_code":"US","city":"Chicago"}`))
		}))
		defer server.Close()

		locator := NewLocator(server.URL, cache.NewMemoryLocationCache(time.Minute))
		first := locator.Lookup(ctx, "203.0.113.7")
		second := locator.Lookup(ctx, "203.0.113.7")

		assert.Equal(t, "US", first.CountryCode)
		assert.Equal(t, "US", second.CountryCode)
		assert.Equal(t, int32(1), calls.Load())
	})
}
