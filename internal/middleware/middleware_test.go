package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/pkg/config"
	"github.com/sergioamr/farm-management/pkg/jwtutil"
	"github.com/sergioamr/farm-management/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newJWT() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware())

	var scoped *zap.Logger
	e.GET("/", func(c echo.Context) error {
		scoped = logger.FromGoContext(c.Request().Context(), nil)
		return c.String(http.StatusOK, c.Request().Header.Get(RequestIDHeader))
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), rec.Body.String())
	assert.NotNil(t, scoped)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = serve(e, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwt := newJWT()
	e := echo.New()
	g := e.Group("/api", JWTAuthMiddleware(jwt))
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	})

	token, err := jwt.GenerateToken("user-1", "maria@farm.com", "user")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(e, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	jwt := newJWT()
	e := echo.New()
	e.POST("/api/suppliers", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, JWTAuthMiddleware(jwt), RequireAdmin())

	for role, want := range map[string]int{"admin": http.StatusCreated, "user": http.StatusForbidden} {
		token, err := jwt.GenerateToken("u", "u@farm.com", role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/suppliers", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, want, serve(e, req).Code, role)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(MetricsMiddleware())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot)
	})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
