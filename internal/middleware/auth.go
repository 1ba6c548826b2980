package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/pkg/jwtutil"
	"github.com/sergioamr/farm-management/pkg/logger"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware
const (
	ClaimsKey = "user"
	UserIDKey = "user_id"
	EmailKey  = "email"
	RoleKey   = "role"
)

// JWTAuthMiddleware creates a middleware that validates JWT tokens
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Access denied. No token provided."})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid token."})
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.UserID)
			c.Set(EmailKey, claims.Email)
			c.Set(RoleKey, claims.Role)
			logger.Attach(c, log.With(zap.String("user_id", claims.UserID)))

			log.Debug("JWT token validated successfully",
				zap.String("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

// RequireAdmin rejects authenticated users without the admin role.
// It must run after JWTAuthMiddleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAdmin(c) {
				logger.FromContext(c).Warn("Admin access denied", zap.String("path", c.Path()))
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Access denied. Admin privileges required."})
			}
			return next(c)
		}
	}
}

// IsAdmin reports whether the authenticated caller has the admin role
func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(RoleKey).(string)
	return model.Role(role) == model.RoleAdmin
}

// UserID returns the id of the authenticated caller
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}
