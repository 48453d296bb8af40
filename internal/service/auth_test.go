package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/pkg/tokens"
)

func newAuth(t *testing.T) (*env, *AuthService) {
	t.Helper()
	e := newEnv(t)
	e.clock.t = time.Now()
	return e, &AuthService{
		Repo:          e.repo,
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		Now:           e.clock.Now,
	}
}

func TestLogin(t *testing.T) {
	e, svc := newAuth(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, " mesero ", "mesero123")
	require.NoError(t, err)
	assert.Equal(t, "mesero", res.User.Username)
	assert.NotEmpty(t, res.SessionID)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleServer), claims.Role)
	assert.Equal(t, res.SessionID, claims.SessionID)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, uid)
	assert.WithinDuration(t, e.clock.t.Add(tokens.AccessTTL), res.AccessExp, time.Second)

	sess, err := e.repo.FindSession(ctx, res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, res.User.ID, sess.UserID)
	assert.Empty(t, sess.Cart)
}

func TestLoginFailures(t *testing.T) {
	e, svc := newAuth(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "mesero", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "mesero123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, e.repo.SetUserActive(ctx, 2, false))
	_, err = svc.Login(ctx, "mesero", "mesero123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotates(t *testing.T) {
	e, svc := newAuth(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "mesero", "mesero123")
	require.NoError(t, err)

	e.clock.Advance(time.Minute)
	pair, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, res.RefreshToken, pair.RefreshToken)

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, claims.SessionID)

	// The old token was consumed by the rotation.
	_, err = svc.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, "not-a-token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshReadsRoleAgain(t *testing.T) {
	e, svc := newAuth(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "mesero", "mesero123")
	require.NoError(t, err)

	u, err := e.repo.FindUser(ctx, res.User.ID)
	require.NoError(t, err)
	u.Role = models.RoleAdmin
	u.PasswordHash = ""
	require.NoError(t, e.repo.UpdateUser(ctx, u))

	pair, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)

	users := &UserService{Repo: e.repo}
	require.NoError(t, users.DeactivateUser(ctx, 1, res.User.ID))
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogOut(t *testing.T) {
	e, svc := newAuth(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.NoError(t, svc.LogOut(ctx, res.RefreshToken))

	sess, err := e.repo.FindSession(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = svc.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestMe(t *testing.T) {
	_, svc := newAuth(t)
	u, err := svc.Me(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)

	_, err = svc.Me(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}
