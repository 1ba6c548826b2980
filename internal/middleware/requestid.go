package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/pkg/logger"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware adds a unique request ID to each request and scopes
// the request logger with it
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(RequestIDHeader, requestID)
			}

			c.Response().Header().Set(RequestIDHeader, requestID)
			logger.Attach(c, logger.GetLogger().With(zap.String("request_id", requestID)))

			return next(c)
		}
	}
}
