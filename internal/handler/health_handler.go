package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/pkg/database"
	"github.com/sergioamr/farm-management/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	service string
	db      *gorm.DB
	started time.Time
}

// NewHealthHandler creates a HealthHandler for the named service
func NewHealthHandler(service string, db *gorm.DB) *HealthHandler {
	return &HealthHandler{service: service, db: db, started: time.Now()}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	status, dbStatus, code := "healthy", "connected", http.StatusOK
	if err := database.Ping(ctx, h.db); err != nil {
		logger.FromContext(c).Error("Database ping failed", zap.Error(err))
		status, dbStatus, code = "unhealthy", "disconnected", http.StatusServiceUnavailable
	}

	return c.JSON(code, echo.Map{
		"status":    status,
		"service":   h.service,
		"database":  dbStatus,
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
	})
}

// Hello returns the service banner on the root endpoint
func (h *HealthHandler) Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Farm Management API is running",
		"version": "1.0.0",
	})
}
