package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/middleware"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/service"
	"github.com/sergioamr/farm-management/pkg/logger"
	"go.uber.org/zap"
)

// SupplierHandler serves /api/suppliers
type SupplierHandler struct {
	suppliers *service.SupplierService
}

// NewSupplierHandler creates a SupplierHandler
func NewSupplierHandler(suppliers *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// Register mounts the supplier routes. Writes require the admin role.
func (h *SupplierHandler) Register(g *echo.Group, admin echo.MiddlewareFunc) {
	g.GET("", h.List)
	g.GET("/stats/overview", h.Stats)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.DELETE("/:id", h.Deactivate, admin)
	g.PATCH("/:id/restore", h.Restore, admin)
	g.POST("/:id/documents", h.AddDocument, admin)
}

// List returns suppliers with pagination and filtering. Listings always
// show the public profile.
func (h *SupplierHandler) List(c echo.Context) error {
	page, err := pageQuery(c)
	if err != nil {
		return respondError(c, err, "fetching suppliers")
	}
	isActive, err := boolQuery(c, "isActive", nil)
	if err != nil {
		return respondError(c, err, "fetching suppliers")
	}
	filter := repository.SupplierFilter{
		Search:       trimmedQuery(c, "search"),
		BusinessType: model.BusinessType(c.QueryParam("businessType")),
		IsActive:     isActive,
	}
	if filter.BusinessType != "" && !filter.BusinessType.Valid() {
		return respondError(c, apperror.NewValidation("businessType", "is not a valid value"), "fetching suppliers")
	}

	if page.Limit == listAllLimit {
		page = repository.Page{Order: "name ASC"}
	}

	res, err := h.suppliers.List(c.Request().Context(), filter, page)
	if err != nil {
		return respondError(c, err, "fetching suppliers")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"suppliers":  supplierViews(res.Items, false),
		"pagination": paginationOf(res),
	})
}

// Get returns one supplier
func (h *SupplierHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "fetching supplier")
	}
	s, err := h.suppliers.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "fetching supplier")
	}
	return c.JSON(http.StatusOK, echo.Map{"supplier": newSupplierView(s, middleware.IsAdmin(c))})
}

// Create adds a supplier
func (h *SupplierHandler) Create(c echo.Context) error {
	var in service.SupplierInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "creating supplier")
	}

	s, err := h.suppliers.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err, "creating supplier")
	}

	logger.FromContext(c).Info("Supplier created successfully", zap.String("id", s.ID), zap.String("name", s.Name))
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Supplier created successfully",
		"supplier": newSupplierView(s, true),
	})
}

// Update replaces a supplier
func (h *SupplierHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "updating supplier")
	}
	var in service.SupplierInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "updating supplier")
	}

	s, err := h.suppliers.Update(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err, "updating supplier")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Supplier updated successfully",
		"supplier": newSupplierView(s, true),
	})
}

// Deactivate soft deletes a supplier
func (h *SupplierHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "deactivating supplier")
	}
	if _, err := h.suppliers.Deactivate(c.Request().Context(), id); err != nil {
		return respondError(c, err, "deactivating supplier")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Supplier deactivated successfully"})
}

// Restore reactivates a supplier
func (h *SupplierHandler) Restore(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "restoring supplier")
	}
	s, err := h.suppliers.Restore(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "restoring supplier")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Supplier restored successfully",
		"supplier": newSupplierView(s, true),
	})
}

// Stats returns the supplier overview
func (h *SupplierHandler) Stats(c echo.Context) error {
	stats, err := h.suppliers.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err, "fetching supplier statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

// AddDocument uploads a file from the "file" form field and attaches it
func (h *SupplierHandler) AddDocument(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "uploading document")
	}
	f, filename, err := openUpload(c, "file")
	if err != nil {
		return respondError(c, err, "uploading document")
	}
	defer f.Close()

	s, err := h.suppliers.AddDocument(c.Request().Context(), id, f, filename, c.FormValue("caption"))
	if err != nil {
		return respondError(c, err, "uploading document")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Document uploaded successfully",
		"supplier": newSupplierView(s, true),
	})
}
