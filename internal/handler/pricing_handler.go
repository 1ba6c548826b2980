package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/service"
)

// PricingHandler serves /api/pricing
type PricingHandler struct {
	pricing *service.PricingService
}

// NewPricingHandler creates a PricingHandler
func NewPricingHandler(pricing *service.PricingService) *PricingHandler {
	return &PricingHandler{pricing: pricing}
}

// Register mounts the pricing routes. Writes require the admin role.
func (h *PricingHandler) Register(g *echo.Group, admin echo.MiddlewareFunc) {
	g.GET("", h.List)
	g.GET("/stats/overview", h.Stats)
	g.GET("/supplier/:supplierId", h.BySupplier)
	g.GET("/inventory/:inventoryId", h.ByInventory)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.DELETE("/:id", h.Deactivate, admin)
	g.PATCH("/:id/restore", h.Restore, admin)
}

// List returns agreements with pagination and filtering. Only active
// agreements are listed unless isActive says otherwise.
func (h *PricingHandler) List(c echo.Context) error {
	filter, page, err := pricingListQuery(c)
	if err != nil {
		return respondError(c, err, "fetching pricing")
	}

	res, err := h.pricing.List(c.Request().Context(), filter, page)
	if err != nil {
		return respondError(c, err, "fetching pricing")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pricing":    pricingViews(res.Items, h.pricing.Now()),
		"pagination": paginationOf(res),
	})
}

func pricingListQuery(c echo.Context) (repository.PricingFilter, repository.Page, error) {
	var filter repository.PricingFilter
	page, err := pageQuery(c)
	if err != nil {
		return filter, page, err
	}
	if filter.IsActive, err = boolQuery(c, "isActive", activeOnly()); err != nil {
		return filter, page, err
	}
	if filter.MinPrice, err = floatQuery(c, "minPrice"); err != nil {
		return filter, page, err
	}
	if filter.MaxPrice, err = floatQuery(c, "maxPrice"); err != nil {
		return filter, page, err
	}

	filter.Search = trimmedQuery(c, "search")
	filter.SupplierID = c.QueryParam("supplier")
	filter.InventoryID = c.QueryParam("inventory")
	filter.Currency = model.Currency(c.QueryParam("currency"))
	if filter.Currency != "" && !filter.Currency.Valid() {
		return filter, page, apperror.NewValidation("currency", "is not a valid value")
	}
	return filter, page, nil
}

// Get returns one agreement with its references
func (h *PricingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "fetching pricing")
	}
	p, err := h.pricing.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "fetching pricing")
	}
	return c.JSON(http.StatusOK, echo.Map{"pricing": newPricingView(p, h.pricing.Now())})
}

// BySupplier lists the active agreements of a supplier
func (h *PricingHandler) BySupplier(c echo.Context) error {
	id, err := pathID(c, "supplierId")
	if err != nil {
		return respondError(c, err, "fetching supplier pricing")
	}
	list, err := h.pricing.BySupplier(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "fetching supplier pricing")
	}
	return c.JSON(http.StatusOK, echo.Map{"pricing": pricingViews(list, h.pricing.Now())})
}

// ByInventory lists the active agreements for an item, cheapest first
func (h *PricingHandler) ByInventory(c echo.Context) error {
	id, err := pathID(c, "inventoryId")
	if err != nil {
		return respondError(c, err, "fetching inventory pricing")
	}
	list, err := h.pricing.ByInventory(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "fetching inventory pricing")
	}
	return c.JSON(http.StatusOK, echo.Map{"pricing": pricingViews(list, h.pricing.Now())})
}

// Create adds an agreement
func (h *PricingHandler) Create(c echo.Context) error {
	var in service.PricingInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "creating pricing")
	}
	p, err := h.pricing.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err, "creating pricing")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Pricing created successfully",
		"pricing": newPricingView(p, h.pricing.Now()),
	})
}

// Update replaces an agreement
func (h *PricingHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "updating pricing")
	}
	var in service.PricingInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "updating pricing")
	}
	p, err := h.pricing.Update(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err, "updating pricing")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Pricing updated successfully",
		"pricing": newPricingView(p, h.pricing.Now()),
	})
}

// Deactivate soft deletes an agreement
func (h *PricingHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "deactivating pricing")
	}
	if _, err := h.pricing.Deactivate(c.Request().Context(), id); err != nil {
		return respondError(c, err, "deactivating pricing")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Pricing deactivated successfully"})
}

// Restore reactivates an agreement
func (h *PricingHandler) Restore(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "restoring pricing")
	}
	p, err := h.pricing.Restore(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "restoring pricing")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Pricing restored successfully",
		"pricing": newPricingView(p, h.pricing.Now()),
	})
}

// Stats returns the pricing overview
func (h *PricingHandler) Stats(c echo.Context) error {
	stats, err := h.pricing.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err, "fetching pricing statistics")
	}
	return c.JSON(http.StatusOK, stats)
}
