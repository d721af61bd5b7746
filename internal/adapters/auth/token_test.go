package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_Issue(t *testing.T) {
	secret := "test-secret"
	issuer := NewJWTIssuer(secret)

	token, err := issuer.Issue("user-123", 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestJWTVerifier_Verify(t *testing.T) {
	secret := "test-secret"
	issuer := NewJWTIssuer(secret)
	verifier := NewJWTVerifier(secret)

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.Issue("user-123", time.Hour)
		require.NoError(t, err)

		userID, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", userID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTIssuer("other-secret").Issue("user-123", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := issuer.Issue("user-123", -time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("empty subject", func(t *testing.T) {
		token, err := issuer.Issue("", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := verifier.Verify("not-a-token")
		require.Error(t, err)
	})
}
