// Package handler exposes the services over HTTP. Handlers parse and
// check the request, call one service operation and render the result
// with its derived fields.
package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/media"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/service"
	"github.com/sergioamr/farm-management/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultLimit = 10
	// listAllLimit asks for every row in one response, e.g. to fill a dropdown
	listAllLimit = 1000
)

// Pagination is the paging block of every list response
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func paginationOf[T any](res *service.ListResult[T]) Pagination {
	limit := res.Limit
	if limit == 0 {
		limit = len(res.Items)
	}
	return Pagination{Page: res.Page, Limit: limit, Total: res.Total, Pages: res.Pages()}
}

// respondError maps a service error onto a status code. Causes of internal
// failures are logged, never returned.
func respondError(c echo.Context, err error, action string) error {
	var (
		validation *apperror.ValidationError
		duplicate  *apperror.DuplicateError
		notFound   *apperror.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Validation failed", "details": validation.Fields})
	case errors.As(err, &duplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": duplicate.Message})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	case errors.Is(err, errInvalidBody):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	case errors.Is(err, media.ErrDisabled):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "File uploads are not configured"})
	}

	logger.FromContext(c).Error("Request failed", zap.String("action", action), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Error " + action})
}

// errInvalidBody rejects a body that is not valid JSON for the target
var errInvalidBody = errors.New("invalid request data")

func bind(c echo.Context, dest interface{}) error {
	if err := c.Bind(dest); err != nil {
		logger.FromContext(c).Warn("Invalid request data", zap.Error(err))
		return errInvalidBody
	}
	return nil
}

// pathID reads a record id from the path
func pathID(c echo.Context, name string) (string, error) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", apperror.NewValidation(name, "must be a valid id")
	}
	return id, nil
}

// pageQuery reads page and limit. Limit 1000 selects every row.
func pageQuery(c echo.Context) (repository.Page, error) {
	page, err := intQuery(c, "page", 1, 1, 0)
	if err != nil {
		return repository.Page{}, err
	}
	limit, err := intQuery(c, "limit", defaultLimit, 1, listAllLimit)
	if err != nil {
		return repository.Page{}, err
	}
	return repository.Page{Number: page, Limit: limit}, nil
}

func intQuery(c echo.Context, name string, def, lo, hi int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi > 0 && v > hi) {
		if hi > 0 {
			return 0, apperror.NewValidation(name, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		}
		return 0, apperror.NewValidation(name, "must be a positive integer")
	}
	return v, nil
}

// boolQuery returns def when the parameter is absent
func boolQuery(c echo.Context, name string, def *bool) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.NewValidation(name, "must be a boolean")
	}
	return &v, nil
}

func floatQuery(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, apperror.NewValidation(name, "must be a non-negative number")
	}
	return &v, nil
}

func trimmedQuery(c echo.Context, name string) string {
	return strings.TrimSpace(c.QueryParam(name))
}

func activeOnly() *bool {
	active := true
	return &active
}

// openUpload opens the multipart file field. The caller closes the file.
func openUpload(c echo.Context, field string) (multipart.File, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", apperror.NewValidation(field, "is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	return f, fh.Filename, nil
}
