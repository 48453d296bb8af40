package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("test-jwt-secret")
	refreshSecret = []byte("test-refresh-secret")
)

func TestAccessToken_RoundTrip(t *testing.T) {
	exp := time.Now().Add(AccessTTL)
	tok, err := NewAccessToken(accessSecret, 12, "admin", "sid-1", exp)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "sid-1", claims.SessionID)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 12, id)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessToken_Rejects(t *testing.T) {
	expired, err := NewAccessToken(accessSecret, 1, "server", "sid", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, accessSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	good, err := NewAccessToken(accessSecret, 1, "server", "sid", time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(good, []byte("other"))
	require.Error(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{Role: "admin"}).SignedString(accessSecret)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(hs512, accessSecret)
	require.Error(t, err)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	tok, err := NewRefreshToken(refreshSecret, 5, "sid-2", "jti-1", time.Now().Add(RefreshTTL))
	require.NoError(t, err)

	claims, err := RefreshClaimsFromToken(tok, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "jti-1", claims.ID)
	assert.Equal(t, "sid-2", claims.SessionID)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 5, id)
}

func TestUserID_BadSubject(t *testing.T) {
	c := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	require.Error(t, err)
}
