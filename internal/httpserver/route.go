package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/restaurant_pos/internal/middleware/auth"
)

type Deps struct {
	AuthHandler     *AuthHTTP
	PosHandler      *PosHTTP
	OrderHandler    *OrderHTTP
	CatalogHandler  *CatalogHTTP
	DiscountHandler *DiscountHTTP
	UserHandler     *UserHTTP
	ReportHandler   *ReportHTTP

	JWTSecret []byte
	Refresher authmw.Refresher

	// Ready backs /health/ready; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher)
	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.LogOut, authMW.RequireAuth)
	auth.GET("/me", d.AuthHandler.Me, authMW.RequireAuth)

	staff := api.Group("", authMW.RequireAuth)
	staff.GET("/menu", d.PosHandler.Menu)
	staff.GET("/products/search", d.PosHandler.Search)
	staff.GET("/categories", d.CatalogHandler.Categories)

	cart := staff.Group("/pos/cart")
	cart.GET("", d.PosHandler.Cart)
	cart.DELETE("", d.PosHandler.ClearCart)
	cart.POST("/items", d.PosHandler.AddItem)
	cart.DELETE("/items/:index", d.PosHandler.RemoveItem)
	cart.PUT("/discount", d.PosHandler.SetDiscount)
	cart.DELETE("/discount", d.PosHandler.RemoveDiscount)
	cart.POST("/confirm", d.PosHandler.Confirm)

	kitchen := staff.Group("/kitchen")
	kitchen.GET("/orders", d.OrderHandler.ActiveOrders)
	kitchen.PATCH("/orders/:id/status", d.OrderHandler.SetStatus)

	orders := staff.Group("/orders")
	orders.GET("", d.OrderHandler.RecentOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.GET("/:id/ticket", d.OrderHandler.Ticket)

	admin := api.Group("/admin", authMW.RequireAdmin)

	products := admin.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.POST("", d.CatalogHandler.CreateProduct)
	products.POST("/reindex", d.CatalogHandler.Reindex)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct)
	products.POST("/:id/deactivate", d.CatalogHandler.DeactivateProduct)
	products.POST("/:id/activate", d.CatalogHandler.ActivateProduct)

	discounts := admin.Group("/discounts")
	discounts.GET("", d.DiscountHandler.List)
	discounts.POST("", d.DiscountHandler.Create)
	discounts.GET("/:id", d.DiscountHandler.Get)
	discounts.PUT("/:id", d.DiscountHandler.Update)
	discounts.POST("/:id/deactivate", d.DiscountHandler.Deactivate)
	discounts.POST("/:id/activate", d.DiscountHandler.Activate)

	users := admin.Group("/users")
	users.GET("", d.UserHandler.List)
	users.POST("", d.UserHandler.Create)
	users.GET("/:id", d.UserHandler.Get)
	users.PUT("/:id", d.UserHandler.Update)
	users.POST("/:id/deactivate", d.UserHandler.Deactivate)
	users.POST("/:id/activate", d.UserHandler.Activate)

	reports := admin.Group("/reports")
	reports.GET("/dashboard", d.ReportHandler.Dashboard)
	reports.GET("/sales-day", d.ReportHandler.SalesDay)
	reports.GET("/sales-range", d.ReportHandler.SalesRange)
	reports.GET("/top-products", d.ReportHandler.TopProducts)
	reports.GET("/categories", d.ReportHandler.Categories)
	reports.GET("/:kind/export", d.ReportHandler.Export)
}
