package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/restaurant_pos/internal/middleware/auth"
	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

// PosHTTP serves the register screen: the menu and the session cart.
type PosHTTP struct {
	Svc     *service.PosService
	Catalog *service.CatalogService
}

func (h *PosHTTP) Menu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.menu")

	menu, err := h.Catalog.Menu(ctx)
	if err != nil {
		return fail(l, "menu", err)
	}
	return c.JSON(http.StatusOK, menu)
}

func (h *PosHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.search")

	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	items, err := h.Catalog.SearchProducts(ctx, c.QueryParam("q"), limit)
	if err != nil {
		return fail(l, "search", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Product]{Data: items})
}

func (h *PosHTTP) Cart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.cart")

	_, _, sid := authmw.Caller(c)
	view, err := h.Svc.View(ctx, sid)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PosHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.add_item")

	var req transport.AddCartItemRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "add_item", err)
	}
	_, _, sid := authmw.Caller(c)
	view, err := h.Svc.AddProduct(ctx, sid, req.ProductID)
	if err != nil {
		return fail(l, "add_item", err)
	}
	l.Info("add_item_success", "product_id", req.ProductID)
	return c.JSON(http.StatusOK, view)
}

func (h *PosHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.remove_item")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		l.Warn("remove_item_error", "status", 400, "reason", "index is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "index is not an integer")
	}
	_, _, sid := authmw.Caller(c)
	view, err := h.Svc.RemoveAt(ctx, sid, index)
	if err != nil {
		return fail(l, "remove_item", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PosHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.clear_cart")

	_, _, sid := authmw.Caller(c)
	view, err := h.Svc.Clear(ctx, sid)
	if err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PosHTTP) SetDiscount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.set_discount")

	var req transport.DiscountCodeRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "set_discount", err)
	}
	_, _, sid := authmw.Caller(c)
	view, err := h.Svc.SetDiscountCode(ctx, sid, req.Code)
	if err != nil {
		return fail(l, "set_discount", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PosHTTP) RemoveDiscount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.remove_discount")

	_, _, sid := authmw.Caller(c)
	view, err := h.Svc.RemoveDiscount(ctx, sid)
	if err != nil {
		return fail(l, "remove_discount", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *PosHTTP) Confirm(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pos.confirm")

	_, _, sid := authmw.Caller(c)
	order, err := h.Svc.Confirm(ctx, sid)
	if err != nil {
		return fail(l, "confirm_order", err)
	}
	l.Info("confirm_order_success", "order_id", order.ID, "number", order.Number)
	return c.JSON(http.StatusCreated, order)
}
