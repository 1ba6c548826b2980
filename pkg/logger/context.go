package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// contextKey is a private type for context keys to prevent collisions
type contextKey int

const (
	// loggerKey is the key used to store the logger in the context
	loggerKey contextKey = iota
)

// EchoKey is the echo context key holding the request scoped logger
const EchoKey = "logger"

// WithLogger returns a copy of the context with the logger included
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromGoContext retrieves the logger stored by WithLogger, falling back to fallback
func FromGoContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}

// FromContext retrieves the logger from the context
func FromContext(c echo.Context) *zap.Logger {
	// Try to extract from Echo context first
	if l, ok := c.Get(EchoKey).(*zap.Logger); ok {
		return l
	}

	// Then try to extract from Go context
	if l, ok := c.Request().Context().Value(loggerKey).(*zap.Logger); ok {
		return l
	}

	// Fall back to default logger
	return zap.L()
}

// Attach stores a request scoped logger on both the echo and the request context
func Attach(c echo.Context, l *zap.Logger) {
	c.Set(EchoKey, l)
	c.SetRequest(c.Request().WithContext(WithLogger(c.Request().Context(), l)))
}
