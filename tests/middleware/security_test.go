package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaiheki-navi/broker-api/internal/config"
	"github.com/gaiheki-navi/broker-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
)

func serveWithSecurity(cfg *config.SecurityConfig) *httptest.ResponseRecorder {
	handler := middleware.SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_FullConfig(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            false,
		ContentTypeNosniff:    true,
		FrameOptions:          "DENY",
		XSSProtection:         "1; mode=block",
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=()",
	}

	w := serveWithSecurity(cfg)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=(), microphone=(), camera=()", w.Header().Get("Permissions-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "HSTS should not be set when disabled")
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tests := []struct {
		name              string
		includeSubdomains bool
		preload           bool
		expected          string
	}{
		{
			name:     "max age only",
			expected: "max-age=31536000",
		},
		{
			name:              "with subdomains",
			includeSubdomains: true,
			expected:          "max-age=31536000; includeSubDomains",
		},
		{
			name:              "with subdomains and preload",
			includeSubdomains: true,
			preload:           true,
			expected:          "max-age=31536000; includeSubDomains; preload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.SecurityConfig{
				EnableHSTS:            true,
				HSTSMaxAge:            31536000, // 1 year
				HSTSIncludeSubdomains: tt.includeSubdomains,
				HSTSPreload:           tt.preload,
			}

			w := serveWithSecurity(cfg)

			assert.Equal(t, tt.expected, w.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestSecurityHeaders_OptionalHeadersDisabled(t *testing.T) {
	cfg := &config.SecurityConfig{
		ContentTypeNosniff: false,
		FrameOptions:       "",
	}

	w := serveWithSecurity(cfg)

	assert.Empty(t, w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("X-Frame-Options"))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Referrer-Policy"))
}

func TestSecurityHeaders_FrameOptionsSameOrigin(t *testing.T) {
	cfg := &config.SecurityConfig{
		FrameOptions: "SAMEORIGIN",
	}

	w := serveWithSecurity(cfg)

	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
}

func TestSecurityHeaders_ServerHeadersRemoved(t *testing.T) {
	cfg := &config.SecurityConfig{}

	handler := middleware.SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	w.Header().Set("X-Powered-By", "Express")
	w.Header().Set("Server", "nginx")

	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("X-Powered-By"))
	assert.Empty(t, w.Header().Get("Server"))
}
