package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/pkg/hash"
	jwthelp "github.com/Skotchmaster/restaurant_pos/pkg/jwt"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
	"github.com/Skotchmaster/restaurant_pos/pkg/tokens"
)

type AuthService struct {
	Repo          AuthStore
	AccessSecret  []byte
	RefreshSecret []byte
	Now           func() time.Time
}

type LoginResult struct {
	tokens.Pair
	User      *models.User
	SessionID string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// issue signs a fresh access/refresh pair for user bound to session sid.
func (s *AuthService) issue(user *models.User, sid string) (*tokens.Pair, *models.RefreshToken, error) {
	now := s.now()
	accessExp := now.Add(tokens.AccessTTL)
	access, err := tokens.NewAccessToken(s.AccessSecret, user.ID, string(user.Role), sid, accessExp)
	if err != nil {
		return nil, nil, err
	}

	jti := jwthelp.NewJTI()
	refreshExp := now.Add(tokens.RefreshTTL)
	refresh, err := tokens.NewRefreshToken(s.RefreshSecret, user.ID, sid, jti, refreshExp)
	if err != nil {
		return nil, nil, err
	}

	stored := &models.RefreshToken{
		Token:     jwthelp.Sha256Hex(refresh),
		UserID:    user.ID,
		SessionID: sid,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}
	return &tokens.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, stored, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active || !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "invalid credentials or inactive account")
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{ID: uuid.NewString(), UserID: user.ID, Cart: models.Cart{}}
	if err := s.Repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	pair, stored, err := s.issue(user, session.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, stored); err != nil {
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{Pair: *pair, User: user, SessionID: session.ID}, nil
}

// Refresh rotates refreshToken. The role is read again from the database so
// role changes and deactivations take effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "reason", "cannot parse refresh token", "error", err)
		return nil, ErrInvalidRefreshToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Repo.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		l.Warn("refresh_failed", "reason", "user missing or inactive", "user_id", userID)
		return nil, ErrInvalidRefreshToken
	}

	pair, stored, err := s.issue(user, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, stored); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) {
			l.Warn("refresh_failed", "reason", "token revoked or expired", "user_id", userID)
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return pair, nil
}

// LogOut revokes the refresh token and drops the session state behind it.
func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if err := s.Repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		return err
	}
	if claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret); err == nil && claims.SessionID != "" {
		return s.Repo.DeleteSession(ctx, claims.SessionID)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Repo.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.Active {
		return nil, ErrNotFound
	}
	return u, nil
}
