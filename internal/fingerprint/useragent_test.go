package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	t.Run("desktop browser", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Equal(t, "Chrome", info.Browser)
		assert.Equal(t, "Linux", info.OS)
	})

	t.Run("mobile browser", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, "Safari", info.Browser)
		assert.Equal(t, "iOS", info.OS)
		assert.Equal(t, "iPhone", info.Device)
	})

	t.Run("empty header", func(t *testing.T) {
		info := ParseUserAgent("")
		assert.NotNil(t, info)
		assert.Empty(t, info.Browser)
		assert.Empty(t, info.OS)
		assert.Empty(t, info.Device)
	})
}
