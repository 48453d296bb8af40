package httpserver

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/report"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

// OrderHTTP covers the kitchen display and single-order views.
type OrderHTTP struct {
	Svc      *service.OrderService
	Branding report.Branding
}

func (h *OrderHTTP) ActiveOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "kitchen.active_orders")

	orders, err := h.Svc.ListActive(ctx)
	if err != nil {
		return fail(l, "active_orders", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Order]{Data: orders})
}

func (h *OrderHTTP) SetStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "kitchen.set_status")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		l.Warn("set_status_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req transport.StatusRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "set_status", err)
	}
	if err := h.Svc.SetStatus(ctx, id, req.Status); err != nil {
		return fail(l, "set_status", err)
	}
	l.Info("set_status_success", "order_id", id, "status", req.Status)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) RecentOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.recent")

	limit := util.ParseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	if limit < 1 || limit > util.MaxPageSize {
		limit = util.DefaultPageSize
	}
	orders, err := h.Svc.RecentOrders(ctx, limit)
	if err != nil {
		return fail(l, "recent_orders", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[models.Order]{Data: orders})
}

// Ticket renders the customer receipt of an order as PDF.
func (h *OrderHTTP) Ticket(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.ticket")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		return fail(l, "ticket", err)
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, report.Ticket(o, h.Branding)); err != nil {
		return fail(l, "ticket", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=ticket-%s.pdf", o.Number))
	return c.Blob(http.StatusOK, mimePDF, buf.Bytes())
}
