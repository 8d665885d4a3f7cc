package utility

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPExtractor(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "direct ignores forwarded header",
			remoteAddr: "192.0.2.1:4321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "192.0.2.1",
		},
		{
			name:       "direct ignores real ip header",
			remoteAddr: "192.0.2.1:4321",
			headers:    map[string]string{"X-Real-IP": "198.51.100.2"},
			want:       "192.0.2.1",
		},
		{
			name:       "trusted proxy forwards client",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.1.2.3:4321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "spoofed entry before trusted hop is skipped",
			trusted:    []string{"10.0.0.1"},
			remoteAddr: "10.0.0.1:4321",
			headers:    map[string]string{"X-Forwarded-For": "1.1.1.1, 203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "untrusted peer cannot forward",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "192.0.2.1:4321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "192.0.2.1",
		},
		{
			name:       "private peer is not trusted implicitly",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "192.168.1.5:4321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "192.168.1.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor, err := NewIPExtractor(tt.trusted)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, extractor(req))
		})
	}
}

func TestNewIPExtractorRejectsBadEntries(t *testing.T) {
	for _, entry := range []string{"not-an-ip", "10.0.0.0/99"} {
		_, err := NewIPExtractor([]string{entry})
		assert.Error(t, err, entry)
	}
}

func TestIPRateLimiterBurstIsPerIP(t *testing.T) {
	limiter, err := NewIPRateLimiter(1, 2, 10)
	require.NoError(t, err)

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	assert.True(t, limiter.Allow("b"))
}

func TestIPRateLimiterForgetsOldClients(t *testing.T) {
	limiter, err := NewIPRateLimiter(1, 1, 1)
	require.NoError(t, err)

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	assert.True(t, limiter.Allow("b"))
	assert.True(t, limiter.Allow("a"), "a was evicted and starts with a fresh bucket")
}
