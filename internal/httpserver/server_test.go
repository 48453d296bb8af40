package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo/repotest"
	"github.com/Skotchmaster/restaurant_pos/internal/report"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
)

type testEnv struct {
	e     *echo.Echo
	ready error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repotest.NewRepo(t)
	_, err := store.Seed(context.Background())
	require.NoError(t, err)

	branding := report.Branding{Name: "Test", Currency: "Q", Location: time.UTC}
	authSvc := &service.AuthService{Repo: store, AccessSecret: []byte("access"), RefreshSecret: []byte("refresh")}
	orders := &service.OrderService{Repo: store, Products: store, Discounts: store, Location: time.UTC}
	catalog := &service.CatalogService{Repo: store}

	env := &testEnv{e: echo.New()}
	env.e.Validator = NewRequestValidator()
	Register(env.e, &Deps{
		AuthHandler:     &AuthHTTP{Svc: authSvc},
		PosHandler:      &PosHTTP{Svc: &service.PosService{Sessions: store, Products: store, Discounts: store, Orders: orders}, Catalog: catalog},
		OrderHandler:    &OrderHTTP{Svc: orders, Branding: branding},
		CatalogHandler:  &CatalogHTTP{Svc: catalog},
		DiscountHandler: &DiscountHTTP{Svc: &service.DiscountService{Repo: store}},
		UserHandler:     &UserHTTP{Svc: &service.UserService{Repo: store}},
		ReportHandler:   &ReportHTTP{Svc: &service.ReportService{Repo: store, Branding: branding}},
		JWTSecret:       []byte("access"),
		Refresher:       authSvc,
		Ready:           func(context.Context) error { return env.ready },
	})
	return env
}

func idStr(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (env *testEnv) doJSONRequest(method, path string, body any, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", transport.LoginRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp transport.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusOK, env.doJSONRequest(http.MethodGet, "/health/live", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(http.MethodGet, "/health/ready", nil, "").Code)

	env.ready = errors.New("db down")
	assert.Equal(t, http.StatusServiceUnavailable, env.doJSONRequest(http.MethodGet, "/health/ready", nil, "").Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	t.Run("sets cookies and returns the user", func(t *testing.T) {
		rec := env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", transport.LoginRequest{Username: "mesero", Password: "mesero123"}, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, rec.Result().Cookies(), 2)

		resp := decode[transport.LoginResponse](t, rec)
		assert.Equal(t, "mesero", resp.User.Username)
		assert.Equal(t, models.RoleServer, resp.User.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", transport.LoginRequest{Username: "mesero", Password: "nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rec := env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "mesero"}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Password value missing")
	})
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "admin123")

	rec := env.doJSONRequest(http.MethodGet, "/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	u := decode[models.User](t, rec)
	assert.Equal(t, "admin", u.Username)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthorization(t *testing.T) {
	env := newTestEnv(t)
	server := env.login(t, "mesero", "mesero123")

	assert.Equal(t, http.StatusUnauthorized, env.doJSONRequest(http.MethodGet, "/api/v1/pos/cart", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.doJSONRequest(http.MethodGet, "/api/v1/pos/cart", nil, "garbage").Code)
	assert.Equal(t, http.StatusForbidden, env.doJSONRequest(http.MethodGet, "/api/v1/admin/products", nil, server).Code)
	assert.Equal(t, http.StatusOK, env.doJSONRequest(http.MethodGet, "/api/v1/menu", nil, server).Code)
}

func TestPosFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "mesero", "mesero123")

	for _, id := range []uint{1, 1, 8} {
		rec := env.doJSONRequest(http.MethodPost, "/api/v1/pos/cart/items", transport.AddCartItemRequest{ProductID: id}, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec := env.doJSONRequest(http.MethodPut, "/api/v1/pos/cart/discount", transport.DiscountCodeRequest{Code: "desc10"}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[service.CartView](t, rec)
	assert.Equal(t, "DESC10", view.DiscountCode)
	assert.True(t, decimal.NewFromInt(105).Equal(view.Subtotal), view.Subtotal.String())
	assert.Len(t, view.Lines, 2)

	rec = env.doJSONRequest(http.MethodPost, "/api/v1/pos/cart/confirm", nil, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Regexp(t, `^P\d{8}-\d{4}$`, order.Number)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("94.50").Equal(order.FinalTotal), order.FinalTotal.String())

	view = decode[service.CartView](t, env.doJSONRequest(http.MethodGet, "/api/v1/pos/cart", nil, token))
	assert.Empty(t, view.Entries)
	require.NotNil(t, view.LastOrderID)
	assert.Equal(t, order.ID, *view.LastOrderID)

	active := decode[transport.ListResponse[models.Order]](t, env.doJSONRequest(http.MethodGet, "/api/v1/kitchen/orders", nil, token))
	require.Len(t, active.Data, 1)
	assert.Equal(t, order.ID, active.Data[0].ID)

	path := "/api/v1/kitchen/orders/" + idStr(order.ID) + "/status"
	rec = env.doJSONRequest(http.MethodPatch, path, transport.StatusRequest{Status: models.StatusPreparing}, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSONRequest(http.MethodPatch, path, map[string]string{"status": "cooking"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSONRequest(http.MethodGet, "/api/v1/orders/"+idStr(order.ID)+"/ticket", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimePDF, rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestPosErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "mesero", "mesero123")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"confirm empty cart", http.MethodPost, "/api/v1/pos/cart/confirm", nil, http.StatusBadRequest},
		{"unknown product", http.MethodPost, "/api/v1/pos/cart/items", transport.AddCartItemRequest{ProductID: 999}, http.StatusNotFound},
		{"missing product id", http.MethodPost, "/api/v1/pos/cart/items", map[string]int{}, http.StatusBadRequest},
		{"remove out of range", http.MethodDelete, "/api/v1/pos/cart/items/7", nil, http.StatusOK},
		{"remove bad index", http.MethodDelete, "/api/v1/pos/cart/items/x", nil, http.StatusBadRequest},
		{"unknown order", http.MethodGet, "/api/v1/orders/999", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.doJSONRequest(tt.method, tt.path, tt.body, token)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestLogOutEndsPosSession(t *testing.T) {
	env := newTestEnv(t)
	rec := env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", transport.LoginRequest{Username: "mesero", Password: "mesero123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[transport.LoginResponse](t, rec).AccessToken
	cookies := rec.Result().Cookies()

	require.Equal(t, http.StatusOK, env.doJSONRequest(http.MethodPost, "/api/v1/auth/logout", nil, token, cookies...).Code)
	assert.Equal(t, http.StatusUnauthorized, env.doJSONRequest(http.MethodGet, "/api/v1/pos/cart", nil, token).Code)
}

func TestAdminProducts(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "admin123")

	rec := env.doJSONRequest(http.MethodGet, "/api/v1/admin/products?page=2&size=5", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data []models.Product `json:"data"`
		Meta util.Meta        `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data, 5)
	assert.EqualValues(t, 22, page.Meta.Total)
	assert.EqualValues(t, 5, page.Meta.TotalPages)

	rec = env.doJSONRequest(http.MethodPost, "/api/v1/admin/products",
		transport.ProductRequest{Name: "Flan", Price: decimal.RequireFromString("12.50"), Category: "Postres"}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Product](t, rec)
	assert.True(t, created.Active)

	id := idStr(created.ID)
	assert.Equal(t, http.StatusNoContent, env.doJSONRequest(http.MethodPost, "/api/v1/admin/products/"+id+"/deactivate", nil, token).Code)
	got := decode[models.Product](t, env.doJSONRequest(http.MethodGet, "/api/v1/admin/products/"+id, nil, token))
	assert.False(t, got.Active)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"missing name", http.MethodPost, "/api/v1/admin/products", map[string]any{"price": "1", "category": "X"}, http.StatusBadRequest},
		{"negative price", http.MethodPost, "/api/v1/admin/products", map[string]any{"name": "X", "price": "-1", "category": "X"}, http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/v1/admin/products/999", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/v1/admin/products/abc", nil, http.StatusBadRequest},
		{"deactivate unknown", http.MethodPost, "/api/v1/admin/products/999/deactivate", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, env.doJSONRequest(tt.method, tt.path, tt.body, token).Code)
		})
	}
}

func TestAdminDiscountsAndUsers(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "admin123")

	rec := env.doJSONRequest(http.MethodPost, "/api/v1/admin/discounts",
		transport.DiscountRequest{Code: "desc10", Kind: models.DiscountPercentage, Value: decimal.NewFromInt(5)}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doJSONRequest(http.MethodPost, "/api/v1/admin/discounts",
		transport.DiscountRequest{Code: "big", Kind: models.DiscountPercentage, Value: decimal.NewFromInt(150)}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decode[transport.ListResponse[models.Discount]](t, env.doJSONRequest(http.MethodGet, "/api/v1/admin/discounts", nil, token))
	assert.Len(t, list.Data, 3)

	rec = env.doJSONRequest(http.MethodPost, "/api/v1/admin/users",
		transport.UserRequest{Username: "cocina", Password: "cocina123", Name: "Cocina", Role: models.RoleServer}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.doJSONRequest(http.MethodPost, "/api/v1/admin/users",
		transport.UserRequest{Username: "x", Password: "123", Name: "X", Role: models.RoleServer}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusBadRequest, env.doJSONRequest(http.MethodPost, "/api/v1/admin/users/1/deactivate", nil, token).Code)
	assert.Equal(t, http.StatusNoContent, env.doJSONRequest(http.MethodPost, "/api/v1/admin/users/2/deactivate", nil, token).Code)

	rec = env.doJSONRequest(http.MethodPost, "/api/v1/auth/login", transport.LoginRequest{Username: "mesero", Password: "mesero123"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReports(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "admin123")

	rec := env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/dashboard", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decode[report.Dashboard](t, rec)
	assert.Zero(t, dash.OrdersToday)

	assert.Equal(t, http.StatusOK, env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/top-products?limit=3", nil, token).Code)
	assert.Equal(t, http.StatusBadRequest, env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/sales-day?date=15-03-2024", nil, token).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/sales-range?start=2024-03-10&end=2024-03-01", nil, token).Code)

	rec = env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/categories/export?format=xlsx", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimeXLSX, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "categories.xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/sales-day/export", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	assert.Equal(t, http.StatusNotFound, env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/nope/export", nil, token).Code)
	assert.Equal(t, http.StatusBadRequest, env.doJSONRequest(http.MethodGet, "/api/v1/admin/reports/categories/export?format=csv", nil, token).Code)
}
