package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/restaurant_pos/internal/middleware/auth"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type toggleFunc func(ctx context.Context, id uint) error

// toggle runs an activate/deactivate style call on the :id path param.
func toggle(c echo.Context, name string, fn toggleFunc) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := fn(ctx, id); err != nil {
		return fail(l, "toggle", err)
	}
	l.Info("toggle_success", "id", id)
	return c.NoContent(http.StatusNoContent)
}

type DiscountHTTP struct {
	Svc *service.DiscountService
}

func (h *DiscountHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.list")

	items, err := h.Svc.ListDiscounts(ctx, repo.DiscountFilter{Search: c.QueryParam("q"), Active: activeParam(c)})
	if err != nil {
		return fail(l, "list_discounts", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Discount]{Data: items})
}

func (h *DiscountHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.get")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.Svc.GetDiscount(ctx, id)
	if err != nil {
		return fail(l, "get_discount", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DiscountHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.create")

	var req transport.DiscountRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "create_discount", err)
	}
	d, err := h.Svc.CreateDiscount(ctx, service.DiscountInput{Code: req.Code, Kind: req.Kind, Value: req.Value})
	if err != nil {
		return fail(l, "create_discount", err)
	}
	l.Info("create_discount_success", "discount_id", d.ID)
	return c.JSON(http.StatusCreated, d)
}

func (h *DiscountHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "discount.update")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req transport.DiscountRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "update_discount", err)
	}
	d, err := h.Svc.UpdateDiscount(ctx, id, service.DiscountInput{Code: req.Code, Kind: req.Kind, Value: req.Value})
	if err != nil {
		return fail(l, "update_discount", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DiscountHTTP) Deactivate(c echo.Context) error {
	return toggle(c, "discount.deactivate", h.Svc.DeactivateDiscount)
}

func (h *DiscountHTTP) Activate(c echo.Context) error {
	return toggle(c, "discount.activate", h.Svc.ActivateDiscount)
}

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	items, err := h.Svc.ListUsers(ctx, repo.UserFilter{
		Search: c.QueryParam("q"),
		Role:   models.Role(c.QueryParam("role")),
		Active: activeParam(c),
	})
	if err != nil {
		return fail(l, "list_users", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.User]{Data: items})
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return fail(l, "get_user", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.UserRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "create_user", err)
	}
	u, err := h.Svc.CreateUser(ctx, service.UserInput{Username: req.Username, Password: req.Password, Name: req.Name, Role: req.Role})
	if err != nil {
		return fail(l, "create_user", err)
	}
	l.Info("create_user_success", "created_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req transport.UserRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "update_user", err)
	}
	u, err := h.Svc.UpdateUser(ctx, id, service.UserInput{Username: req.Username, Password: req.Password, Name: req.Name, Role: req.Role})
	if err != nil {
		return fail(l, "update_user", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Deactivate(c echo.Context) error {
	actorID, _, _ := authmw.Caller(c)
	return toggle(c, "user.deactivate", func(ctx context.Context, id uint) error {
		return h.Svc.DeactivateUser(ctx, actorID, id)
	})
}

func (h *UserHTTP) Activate(c echo.Context) error {
	return toggle(c, "user.activate", h.Svc.ActivateUser)
}
