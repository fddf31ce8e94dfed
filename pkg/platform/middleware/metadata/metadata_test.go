package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"cis/pkg/requestcontext"
)

func TestSoftware(t *testing.T) {
	t.Run("empty user agent", func(t *testing.T) {
		assert.Equal(t, "", Software("  "))
	})

	t.Run("browser user agent includes product", func(t *testing.T) {
		ua := "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		got := Software(ua)
		assert.Contains(t, got, "Chrome")
		assert.NotContains(t, got, "  ")
	})

	t.Run("tool user agent is not empty", func(t *testing.T) {
		assert.NotEmpty(t, Software("snowstorm/10.2"))
	})
}

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	handler := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/sct/ids", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	req.Header.Set("User-Agent", "snowstorm/10.2")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "10.0.0.7", ip)
	assert.Equal(t, "snowstorm/10.2", ua)
}
