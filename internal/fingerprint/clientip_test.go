package fingerprint

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	t.Run("prefers X-Real-IP", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.7")
		req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
		assert.Equal(t, "203.0.113.7", ClientIP(req))
	})

	t.Run("first forwarded hop", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
		assert.Equal(t, "198.51.100.1", ClientIP(req))
	})

	t.Run("falls back to peer address", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.0.2.4:51234"
		assert.Equal(t, "192.0.2.4", ClientIP(req))
	})

	t.Run("peer address without port", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "192.0.2.4"
		assert.Equal(t, "192.0.2.4", ClientIP(req))
	})
}
