package auth_test

import (
	"testing"
	"time"

	"github.com/gaiheki-navi/broker-api/internal/auth"
	"github.com/gaiheki-navi/broker-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

func newTestIssuer(ttlHours int) *auth.TokenIssuer {
	return auth.NewTokenIssuer(&config.AuthConfig{
		JWTSecret:     testSecret,
		TokenTTLHours: ttlHours,
	})
}

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := newTestIssuer(24)

	t.Run("round trip preserves the actor", func(t *testing.T) {
		token, expiresAt, err := issuer.Issue(42, "partner@example.com", auth.RolePartner)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.True(t, expiresAt.After(time.Now()))

		actor, err := issuer.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, 42, actor.AccountID)
		assert.Equal(t, "partner@example.com", actor.Email)
		assert.Equal(t, auth.RolePartner, actor.Role)
		assert.True(t, actor.IsPartner())
		assert.False(t, actor.IsAdmin())
	})

	t.Run("admin role round trips", func(t *testing.T) {
		token, _, err := issuer.Issue(1, "admin@example.com", auth.RoleAdmin)
		require.NoError(t, err)

		actor, err := issuer.Validate(token)
		require.NoError(t, err)
		assert.True(t, actor.IsAdmin())
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := issuer.Validate("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := auth.NewTokenIssuer(&config.AuthConfig{
			JWTSecret:     "a-completely-different-secret",
			TokenTTLHours: 24,
		})
		token, _, err := other.Issue(42, "partner@example.com", auth.RolePartner)
		require.NoError(t, err)

		_, err = issuer.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expired := newTestIssuer(-1)
		token, _, err := expired.Issue(42, "partner@example.com", auth.RolePartner)
		require.NoError(t, err)

		_, err = expired.Validate(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("unknown role claim is rejected", func(t *testing.T) {
		claims := &auth.Claims{
			Email: "intruder@example.com",
			Role:  auth.ActorRole("superuser"),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "42",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = issuer.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("non numeric subject is rejected", func(t *testing.T) {
		claims := &auth.Claims{
			Email: "intruder@example.com",
			Role:  auth.RolePartner,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "abc",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = issuer.Validate(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
