package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/service"
	"github.com/sergioamr/farm-management/pkg/logger"
	"go.uber.org/zap"
)

// InventoryHandler serves /api/inventory
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler creates an InventoryHandler
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// Register mounts the inventory routes. Writes require the admin role.
func (h *InventoryHandler) Register(g *echo.Group, admin echo.MiddlewareFunc) {
	g.GET("", h.List)
	g.GET("/stats/overview", h.Stats)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.PATCH("/:id/stock", h.UpdateStock, admin)
	g.DELETE("/:id", h.Deactivate, admin)
	g.PATCH("/:id/restore", h.Restore, admin)
	g.POST("/:id/images", h.AddImage, admin)
}

// List returns items with pagination and filtering. Only active items are
// listed unless isActive says otherwise.
func (h *InventoryHandler) List(c echo.Context) error {
	page, err := pageQuery(c)
	if err != nil {
		return respondError(c, err, "fetching inventory")
	}
	isActive, err := boolQuery(c, "isActive", activeOnly())
	if err != nil {
		return respondError(c, err, "fetching inventory")
	}

	filter := repository.InventoryFilter{
		Search:      trimmedQuery(c, "search"),
		Category:    model.Category(c.QueryParam("category")),
		SupplierID:  c.QueryParam("supplier"),
		StockStatus: model.StockStatus(c.QueryParam("stockStatus")),
		IsActive:    isActive,
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return respondError(c, apperror.NewValidation("category", "is not a valid value"), "fetching inventory")
	}
	if filter.StockStatus != "" && !filter.StockStatus.Valid() {
		return respondError(c, apperror.NewValidation("stockStatus", "is not a valid value"), "fetching inventory")
	}

	res, err := h.inventory.List(c.Request().Context(), filter, page)
	if err != nil {
		return respondError(c, err, "fetching inventory")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"inventory":  inventoryViews(res.Items),
		"pagination": paginationOf(res),
	})
}

// Get returns one item with its supplier
func (h *InventoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "fetching inventory item")
	}
	includeInactive, err := boolQuery(c, "includeInactive", new(bool))
	if err != nil {
		return respondError(c, err, "fetching inventory item")
	}

	item, err := h.inventory.Get(c.Request().Context(), id, *includeInactive)
	if err != nil {
		return respondError(c, err, "fetching inventory item")
	}
	return c.JSON(http.StatusOK, echo.Map{"inventory": newInventoryView(item)})
}

// Create adds an item
func (h *InventoryHandler) Create(c echo.Context) error {
	var in service.InventoryInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "creating inventory item")
	}

	item, err := h.inventory.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err, "creating inventory item")
	}

	logger.FromContext(c).Info("Inventory item created successfully", zap.String("id", item.ID), zap.String("sku", item.SKU))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Inventory item created successfully",
		"inventory": newInventoryView(item),
	})
}

// Update replaces an item
func (h *InventoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "updating inventory item")
	}
	var in service.InventoryInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "updating inventory item")
	}

	item, err := h.inventory.Update(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err, "updating inventory item")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Inventory item updated successfully",
		"inventory": newInventoryView(item),
	})
}

// UpdateStock sets the stock levels of an item
func (h *InventoryHandler) UpdateStock(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "updating stock")
	}
	var in service.StockInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "updating stock")
	}

	item, err := h.inventory.UpdateStock(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err, "updating stock")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Stock updated successfully",
		"inventory": newInventoryView(item),
	})
}

// Deactivate soft deletes an item
func (h *InventoryHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "deactivating inventory item")
	}
	if _, err := h.inventory.Deactivate(c.Request().Context(), id); err != nil {
		return respondError(c, err, "deactivating inventory item")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Inventory item deactivated successfully"})
}

// Restore reactivates an item
func (h *InventoryHandler) Restore(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "restoring inventory item")
	}
	item, err := h.inventory.Restore(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "restoring inventory item")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Inventory item restored successfully",
		"inventory": newInventoryView(item),
	})
}

// Stats returns the inventory overview
func (h *InventoryHandler) Stats(c echo.Context) error {
	stats, err := h.inventory.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err, "fetching inventory stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// AddImage uploads an image from the "image" form field and attaches it
func (h *InventoryHandler) AddImage(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "uploading image")
	}
	f, filename, err := openUpload(c, "image")
	if err != nil {
		return respondError(c, err, "uploading image")
	}
	defer f.Close()

	item, err := h.inventory.AddImage(c.Request().Context(), id, f, filename, c.FormValue("caption"))
	if err != nil {
		return respondError(c, err, "uploading image")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Image uploaded successfully",
		"inventory": newInventoryView(item),
	})
}
