package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/authz"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	jwthelp "github.com/Skotchmaster/restaurant_pos/pkg/jwt"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
	"github.com/Skotchmaster/restaurant_pos/pkg/tokens"
)

// Context keys set for downstream handlers.
const (
	UserIDKey    = "user_id"
	RoleKey      = "role"
	SessionIDKey = "session_id"
)

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

// AutoRefreshMiddleware resolves the caller from the access token. An expired
// access token is swapped for a new pair when a refresh cookie is present.
type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Refresher Refresher
}

func NewAutoRefreshMiddleware(secret []byte, refresher Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{JWTSecret: secret, Refresher: refresher}
}

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, authz.RoleAny)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, models.RoleAdmin)
}

func (m *AutoRefreshMiddleware) require(next echo.HandlerFunc, role models.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, status, msg := m.resolve(c)
		if claims == nil {
			logging.FromContext(c.Request().Context()).Info("auth_rejected", "reason", msg)
			return echo.NewHTTPError(status, msg)
		}

		p := principal(claims)
		switch authz.Check(p, role) {
		case authz.Authorized:
		case authz.Forbidden:
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		default:
			ClearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		c.Set(UserIDKey, p.UserID)
		c.Set(RoleKey, p.Role)
		c.Set(SessionIDKey, p.SessionID)
		return next(c)
	}
}

func accessToken(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil {
		return ck.Value
	}
	return ""
}

func (m *AutoRefreshMiddleware) resolve(c echo.Context) (*tokens.AccessClaims, int, string) {
	raw := accessToken(c)
	if raw == "" {
		if _, err := c.Cookie(jwthelp.RefreshCookie); err != nil {
			return nil, http.StatusUnauthorized, "missing access token"
		}
	} else {
		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err == nil && claims != nil {
			return claims, 0, ""
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			ClearAuthCookies(c)
			return nil, http.StatusUnauthorized, "invalid access token"
		}
	}

	refreshCookie, err := c.Cookie(jwthelp.RefreshCookie)
	if err != nil || refreshCookie.Value == "" || m.Refresher == nil {
		ClearAuthCookies(c)
		return nil, http.StatusUnauthorized, "refresh token missing"
	}

	pair, err := m.Refresher.Refresh(c.Request().Context(), refreshCookie.Value)
	if err != nil {
		ClearAuthCookies(c)
		return nil, http.StatusUnauthorized, "refresh failed"
	}
	SetAuthCookies(c, pair)

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
	if err != nil || claims == nil {
		ClearAuthCookies(c)
		return nil, http.StatusUnauthorized, "new access token invalid"
	}
	return claims, 0, ""
}

func principal(claims *tokens.AccessClaims) *authz.Principal {
	id, err := claims.UserID()
	if err != nil {
		return nil
	}
	return &authz.Principal{UserID: id, Role: models.Role(claims.Role), SessionID: claims.SessionID}
}

func SetAuthCookies(c echo.Context, pair *tokens.Pair) {
	c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))
}

func ClearAuthCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
}

// Caller returns what RequireAuth stored on the context.
func Caller(c echo.Context) (userID uint, role models.Role, sessionID string) {
	userID, _ = c.Get(UserIDKey).(uint)
	role, _ = c.Get(RoleKey).(models.Role)
	sessionID, _ = c.Get(SessionIDKey).(string)
	return userID, role, sessionID
}
