package logger

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop()

// InitLogger initializes the logger with configuration
func InitLogger(cfg *config.Config) error {
	level := parseLevel(cfg.Log.Level)

	var (
		built *zap.Logger
		err   error
	)
	if cfg.IsProduction() {
		prodConfig := zap.NewProductionConfig()
		prodConfig.Level = zap.NewAtomicLevelAt(level)
		prodConfig.EncoderConfig.TimeKey = "timestamp"
		prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		built, err = prodConfig.Build(zap.Fields(cfg.LogConfig()...))
	} else {
		// Development logger configuration with colors and human-friendly output
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(level)
		devConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

		built, err = devConfig.Build(zap.Fields(cfg.LogConfig()...))
	}
	if err != nil {
		return err
	}

	log = built
	zap.ReplaceGlobals(log)
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	return log
}

// Middleware logs every HTTP request once it has been handled
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// let echo resolve the final status before logging
				c.Error(err)
			}

			FromContext(c).Info("HTTP Request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			)

			return nil
		}
	}
}
