package mcpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewIPAuthMiddleware_Validation(t *testing.T) {
	_, err := NewIPAuthMiddleware(nil, false)
	assert.Error(t, err)

	_, err = NewIPAuthMiddleware([]string{"not-an-ip"}, false)
	assert.Error(t, err)

	_, err = NewIPAuthMiddleware([]string{"10.0.0.0/99"}, false)
	assert.Error(t, err)

	_, err = NewIPAuthMiddleware([]string{"127.0.0.1", "10.0.0.0/8", "::1"}, false)
	assert.NoError(t, err)
}

func TestIPAuthMiddleware_AllowsAndDenies(t *testing.T) {
	m, err := NewIPAuthMiddleware([]string{"127.0.0.1", "10.1.0.0/16"}, false)
	require.NoError(t, err)
	handler := m.Middleware(okHandler())

	tests := []struct {
		name       string
		remoteAddr string
		want       int
	}{
		{"loopback allowed", "127.0.0.1:55123", http.StatusOK},
		{"cidr member allowed", "10.1.42.7:1234", http.StatusOK},
		{"outside cidr denied", "10.2.0.1:1234", http.StatusForbidden},
		{"public denied", "203.0.113.9:443", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIPAuthMiddleware_XForwardedFor(t *testing.T) {
	m, err := NewIPAuthMiddleware([]string{"198.51.100.7"}, false)
	require.NoError(t, err)
	handler := m.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:80" // proxy address, not on the allow-list
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:9999"
	assert.Equal(t, "192.0.2.1", extractClientIP(req))

	req.Header.Set("X-Real-IP", " 198.51.100.2 ")
	assert.Equal(t, "198.51.100.2", extractClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.2")
	assert.Equal(t, "203.0.113.5", extractClientIP(req))
}
