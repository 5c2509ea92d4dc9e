package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smmonirhasan92/man2man-sub004/config"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "man2man",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateAccessToken(cfg, 42, "01712345678", "agent")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "01712345678", claims.Phone)
	assert.Equal(t, "agent", claims.Role)
	assert.Equal(t, "man2man", claims.Issuer)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateAccessToken(cfg, 42, "01712345678", "user")
	require.NoError(t, err)

	other := testJWTConfig()
	other.AccessSecret = "someone-else"
	_, err = ParseAccessToken(other, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiry = -time.Minute

	token, err := GenerateAccessToken(cfg, 42, "01712345678", "user")
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateRefreshToken(cfg, 42)
	require.NoError(t, err)

	id, err := ParseRefreshToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	cfg := testJWTConfig()

	// Signed with the access secret, so the refresh parser must refuse it.
	token, err := GenerateAccessToken(cfg, 42, "01712345678", "user")
	require.NoError(t, err)

	_, err = ParseRefreshToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	cfg := testJWTConfig()

	_, err := ParseAccessToken(cfg, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseRefreshToken(cfg, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
