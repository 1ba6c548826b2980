package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/internal/middleware"
	"github.com/sergioamr/farm-management/internal/service"
)

// AuthHandler serves /api/auth
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register mounts the auth routes. Login is public, the rest need a token
// and registering users needs the admin role.
func (h *AuthHandler) Register(g *echo.Group, authn, admin echo.MiddlewareFunc) {
	g.POST("/login", h.Login)
	g.POST("/register", h.RegisterUser, authn, admin)
	g.GET("/profile", h.Profile, authn)
	g.POST("/logout", h.Logout, authn)
}

// Login exchanges credentials for a token
func (h *AuthHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "during login")
	}

	res, err := h.auth.Login(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err, "during login")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

// RegisterUser creates a user
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	var in service.RegisterInput
	if err := bind(c, &in); err != nil {
		return respondError(c, err, "creating user")
	}

	user, err := h.auth.Register(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err, "creating user")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// Profile returns the caller
func (h *AuthHandler) Profile(c echo.Context) error {
	user, err := h.auth.Profile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "fetching profile")
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// Logout is acknowledged only. Tokens are stateless and expire on their own.
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}
