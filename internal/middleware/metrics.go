package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/prometheus"
)

// MetricsMiddleware records the count and duration of every request by route
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			prometheus.RecordHTTPRequest(c.Request().Method, path, status, time.Since(start))

			return err
		}
	}
}
