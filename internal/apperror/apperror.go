package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError names a rejected field and why
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports field constraint or bulk pricing violations.
// The write is never attempted.
type ValidationError struct {
	Fields []FieldError
}

// NewValidation builds a ValidationError for a single field
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// DuplicateError reports a uniqueness collision, found either by the
// pre-write check or by the storage constraint.
type DuplicateError struct {
	Message string
	Err     error
}

func (e *DuplicateError) Error() string { return e.Message }

func (e *DuplicateError) Unwrap() error { return e.Err }

// NotFoundError reports a missing record or a missing referenced record
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// StorageError wraps a store failure outside the other kinds
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Kind returns a short label for metrics and logs
func Kind(err error) string {
	var (
		validation *ValidationError
		duplicate  *DuplicateError
		notFound   *NotFoundError
		storage    *StorageError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &duplicate):
		return "duplicate"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &storage):
		return "storage"
	}
	return "unknown"
}
