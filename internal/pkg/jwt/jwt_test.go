package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabboard/internal/pkg/config"
	pkgErrors "collabboard/pkg/errors"
)

func newTestManager(accessExpire int) *Manager {
	return NewManager(config.JWTConfig{
		Secret:             "unit-test-secret",
		AccessTokenExpire:  accessExpire,
		RefreshTokenExpire: 3600,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestManager(3600)

	token, err := m.GenerateAccessToken(Identity{UserID: 42, Email: "alice@example.com", Name: "Alice", Role: "member"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "42", claims.Subject)
}

func TestExpiredToken(t *testing.T) {
	m := newTestManager(-60)

	token, err := m.GenerateAccessToken(Identity{UserID: 1})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, pkgErrors.ErrTokenExpired)
}

func TestWrongSecret(t *testing.T) {
	token, err := newTestManager(3600).GenerateAccessToken(Identity{UserID: 1})
	require.NoError(t, err)

	other := NewManager(config.JWTConfig{Secret: "another-secret", AccessTokenExpire: 3600})
	_, err = other.ValidateAccessToken(token)
	require.Error(t, err)
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))
}

func TestRefreshTokenRejectedForAccess(t *testing.T) {
	m := newTestManager(3600)

	token, err := m.GenerateRefreshToken(Identity{UserID: 1})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidToken)
}

func TestMissingToken(t *testing.T) {
	_, err := newTestManager(3600).ValidateAccessToken("")
	assert.ErrorIs(t, err, pkgErrors.ErrMissingToken)
}
