package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgrid/assetgrid/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name: "CF-Connecting-IP wins over everything",
			headers: map[string]string{
				"CF-Connecting-IP": "203.0.113.195",
				"X-Forwarded-For":  "192.168.1.1",
				"X-Real-IP":        "10.0.0.1",
			},
			remoteAddr: "172.16.0.1:54321",
			expected:   "203.0.113.195",
		},
		{
			name: "first valid X-Forwarded-For hop",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip, 198.51.100.178, 203.0.113.195",
			},
			remoteAddr: "10.0.0.1:54321",
			expected:   "198.51.100.178",
		},
		{
			name:       "X-Real-IP fallback",
			headers:    map[string]string{"X-Real-IP": "192.0.2.44"},
			remoteAddr: "10.0.0.1:54321",
			expected:   "192.0.2.44",
		},
		{
			name:       "RemoteAddr without headers",
			remoteAddr: "172.16.0.1:8080",
			expected:   "172.16.0.1",
		},
		{
			name:       "RemoteAddr as bare IP",
			remoteAddr: "172.16.0.1",
			expected:   "172.16.0.1",
		},
		{
			name:       "IPv6 normalization",
			headers:    map[string]string{"X-Forwarded-For": "2001:0db8:0000:0000:0000:0000:0000:0001"},
			remoteAddr: "10.0.0.1:54321",
			expected:   "2001:db8::1",
		},
		{
			name:       "garbage headers fall through",
			headers:    map[string]string{"CF-Connecting-IP": "banana", "X-Real-IP": "<script>"},
			remoteAddr: "192.0.2.7:1234",
			expected:   "192.0.2.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			assert.Equal(t, tt.expected, clientip.GetIP(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	handler := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = clientip.GetIPFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.23:443"
	handler.ServeHTTP(httptest.NewRecorder(), r)

	require.Equal(t, "198.51.100.23", seen)
}
