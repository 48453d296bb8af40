package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// activeParam reads ?active=true|false; anything else means no filter.
func activeParam(c echo.Context) *bool {
	b, err := strconv.ParseBool(c.QueryParam("active"))
	if err != nil {
		return nil
	}
	return &b
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, err := h.Svc.ListProducts(ctx, repo.ProductFilter{
		Category: c.QueryParam("category"),
		Active:   activeParam(c),
		Search:   c.QueryParam("q"),
	})
	if err != nil {
		return fail(l, "get_products", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	data, meta := util.Paginate(items, page, size)
	return c.JSON(http.StatusOK, transport.ListResponse[models.Product]{Data: data, Meta: meta})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.categories")

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		return fail(l, "categories", err)
	}
	return c.JSON(http.StatusOK, transport.ListResponse[string]{Data: cats})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "product_create", err)
	}
	p, err := h.Svc.CreateProduct(ctx, service.ProductInput{Name: req.Name, Price: req.Price, Category: req.Category})
	if err != nil {
		return fail(l, "product_create", err)
	}
	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req transport.ProductRequest
	if err := bindValid(c, &req); err != nil {
		return fail(l, "product_update", err)
	}
	p, err := h.Svc.UpdateProduct(ctx, id, service.ProductInput{Name: req.Name, Price: req.Price, Category: req.Category})
	if err != nil {
		return fail(l, "product_update", err)
	}
	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeactivateProduct(c echo.Context) error {
	return toggle(c, "product.deactivate", h.Svc.DeactivateProduct)
}

func (h *CatalogHTTP) ActivateProduct(c echo.Context) error {
	return toggle(c, "product.activate", h.Svc.ActivateProduct)
}

func (h *CatalogHTTP) Reindex(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.reindex")

	n, err := h.Svc.Reindex(ctx)
	if err != nil {
		return fail(l, "reindex", err)
	}
	l.Info("reindex_success", "products", n)
	return c.JSON(http.StatusOK, echo.Map{"indexed": n})
}
