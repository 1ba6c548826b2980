package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/internal/middleware"
	"github.com/sergioamr/farm-management/pkg/jwtutil"
)

// Handlers groups every handler of the API
type Handlers struct {
	Suppliers *SupplierHandler
	Inventory *InventoryHandler
	Pricing   *PricingHandler
	Auth      *AuthHandler
	Health    *HealthHandler
}

// Mount registers the routes on e. Extra middleware applies to /api only.
func (h Handlers) Mount(e *echo.Echo, jwt *jwtutil.JWTUtil, apiMiddleware ...echo.MiddlewareFunc) {
	e.GET("/", h.Health.Hello)
	e.GET("/health", h.Health.HealthCheck)

	authn := middleware.JWTAuthMiddleware(jwt)
	admin := middleware.RequireAdmin()

	api := e.Group("/api", apiMiddleware...)
	h.Auth.Register(api.Group("/auth"), authn, admin)
	h.Suppliers.Register(api.Group("/suppliers", authn), admin)
	h.Inventory.Register(api.Group("/inventory", authn), admin)
	h.Pricing.Register(api.Group("/pricing", authn), admin)
}
