package httpserver

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/report"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportHTTP struct {
	Svc *service.ReportService
}

func (h *ReportHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.dashboard")

	d, err := h.Svc.Dashboard(ctx)
	if err != nil {
		return fail(l, "dashboard", err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *ReportHTTP) SalesDay(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.sales_day")

	r, err := h.Svc.SalesDay(ctx, c.QueryParam("date"))
	if err != nil {
		return fail(l, "sales_day", err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReportHTTP) SalesRange(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.sales_range")

	r, err := h.Svc.SalesRange(ctx, c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return fail(l, "sales_range", err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReportHTTP) TopProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.top_products")

	limit := util.ParseIntDefault(c.QueryParam("limit"), 0)
	r, err := h.Svc.TopProducts(ctx, c.QueryParam("start"), c.QueryParam("end"), limit)
	if err != nil {
		return fail(l, "top_products", err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *ReportHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.categories")

	r, err := h.Svc.Categories(ctx, c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return fail(l, "categories", err)
	}
	return c.JSON(http.StatusOK, r)
}

// Export renders any report kind as a pdf (default) or xlsx download.
func (h *ReportHTTP) Export(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.export")

	kind := c.Param("kind")
	format := c.QueryParam("format")
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		l.Warn("export_error", "status", 400, "reason", "unsupported format", "format", format)
		return echo.NewHTTPError(http.StatusBadRequest, "format must be pdf or xlsx")
	}

	doc, err := h.Svc.Export(ctx, kind, service.ReportQuery{
		Date:  c.QueryParam("date"),
		Start: c.QueryParam("start"),
		End:   c.QueryParam("end"),
		Limit: util.ParseIntDefault(c.QueryParam("limit"), 0),
	})
	if err != nil {
		return fail(l, "export", err)
	}

	var buf bytes.Buffer
	mime := mimePDF
	if format == "xlsx" {
		mime = mimeXLSX
		err = report.WriteXLSX(&buf, doc)
	} else {
		err = report.WritePDF(&buf, doc)
	}
	if err != nil {
		return fail(l, "export", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", kind+"."+format))
	l.Info("export_success", "kind", kind, "format", format, "bytes", buf.Len())
	return c.Blob(http.StatusOK, mime, buf.Bytes())
}
