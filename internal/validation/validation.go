// Package validation checks field level constraints on incoming records
// before any business rule runs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/model"
)

// DateLayouts are the accepted ISO-8601 forms for date fields
var DateLayouts = []string{time.RFC3339, "2006-01-02"}

// Validator wraps validator/v10 with the enum and isodate tags and reports
// fields by their JSON names.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom tags registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(model.Enum)
		return ok && e.Valid()
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	return &Validator{validate: v}
}

// Struct validates s and returns a *apperror.ValidationError listing every
// failing field, or nil.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &apperror.ValidationError{Fields: []apperror.FieldError{{Field: "body", Message: err.Error()}}}
	}

	out := &apperror.ValidationError{Fields: make([]apperror.FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, apperror.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return out
}

// Validate lets the Validator serve as echo's validator
func (v *Validator) Validate(i interface{}) error {
	return v.Struct(i)
}

// ParseDate accepts a full timestamp or a calendar date
func ParseDate(s string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// fieldPath drops the root struct name: "SupplierInput.address.city" -> "address.city"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid id"
	case "enum":
		return fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value()))
	case "isodate":
		return "must be a valid ISO 8601 date"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}
