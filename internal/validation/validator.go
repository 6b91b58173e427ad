// Package validation checks client input before it reaches services or the store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"capsort/internal/models"

	"github.com/go-playground/validator/v10"
)

// now is the clock used for the current-year bound.
var now = time.Now

// CurrentYear returns the latest year a project may carry.
func CurrentYear() int {
	return now().Year()
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return fl.Field().Int() <= int64(CurrentYear())
		}
		return false
	})

	return v
}

// Struct validates s and returns a models.AppError carrying one FieldError per
// rejected field, or nil.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	fields := FormatFieldErrors(err)
	if len(fields) == 0 {
		return models.NewValidationError(err.Error())
	}
	return models.NewFieldValidationError(fields...)
}

// FormatFieldErrors converts validator errors into client-facing field messages.
func FormatFieldErrors(err error) []models.FieldError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	out := make([]models.FieldError, 0, len(validationErrs))
	for _, e := range validationErrs {
		out = append(out, models.FieldError{Field: e.Field(), Message: message(e)})
	}
	return out
}

func message(e validator.FieldError) string {
	field := e.Field()
	isText := e.Kind() == reflect.String

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "notfuture":
		return fmt.Sprintf("%s must not be later than %d", field, CurrentYear())
	case "min", "gte":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max", "lte":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	default:
		return field + " is invalid"
	}
}
