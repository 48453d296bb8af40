package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(DefaultConfig()))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/api/v1/menu", ok)
	e.POST("/api/v1/pos/cart/confirm", ok)
	e.POST("/api/v1/auth/login", ok)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSafeMethodIssuesToken(t *testing.T) {
	rec := serve(newEcho(), httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token, cookies[0].Value)
}

func TestUnsafeMethod(t *testing.T) {
	e := newEcho()
	ck := &http.Cookie{Name: "XSRF-TOKEN", Value: "tok"}

	req := func(header string, origin string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "http://pos.local/api/v1/pos/cart/confirm", nil)
		r.AddCookie(ck)
		if header != "" {
			r.Header.Set("X-CSRF-Token", header)
		}
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.Equal(t, http.StatusOK, serve(e, req("tok", "http://pos.local")).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, req("other", "http://pos.local")).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, req("", "http://pos.local")).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, req("tok", "http://evil.example")).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, req("tok", "")).Code)
}

func TestExemptions(t *testing.T) {
	e := newEcho()

	bearer := httptest.NewRequest(http.MethodPost, "/api/v1/pos/cart/confirm", nil)
	bearer.Header.Set(echo.HeaderAuthorization, "Bearer abc")
	assert.Equal(t, http.StatusOK, serve(e, bearer).Code)

	login := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	assert.Equal(t, http.StatusOK, serve(e, login).Code)
}
