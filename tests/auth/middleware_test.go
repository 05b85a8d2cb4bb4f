package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMiddleware() *auth.Middleware {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.TokenTTLHours = 24
	return auth.NewMiddleware(cfg, zap.NewNop())
}

func TestMiddleware_Authenticate(t *testing.T) {
	m := newTestMiddleware()

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.FromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Account-ID", actor.Email)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes through with actor context", func(t *testing.T) {
		token, _, err := m.Issuer().Issue(7, "partner@example.com", auth.RolePartner)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/partner/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "partner@example.com", rec.Header().Get("X-Account-ID"))
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/partner/orders", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/partner/orders", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/partner/orders", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_RoleGuards(t *testing.T) {
	m := newTestMiddleware()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(t *testing.T, guard func(http.Handler) http.Handler, accountID int, role auth.ActorRole) int {
		token, _, err := m.Issuer().Issue(accountID, "someone@example.com", role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		m.Authenticate(guard(ok)).ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("admin guard accepts admins", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(t, m.RequireAdmin, 1, auth.RoleAdmin))
	})

	t.Run("admin guard rejects partners", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(t, m.RequireAdmin, 7, auth.RolePartner))
	})

	t.Run("partner guard accepts partners", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(t, m.RequirePartner, 7, auth.RolePartner))
	})

	t.Run("partner guard rejects admins", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(t, m.RequirePartner, 1, auth.RoleAdmin))
	})

	t.Run("guard without actor context is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		m.RequireAdmin(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
