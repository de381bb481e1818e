package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Validate checks struct tags on v and returns validator.ValidationErrors on failure.
func Validate(v any) error {
	return instance().Struct(v)
}

// FormatValidationErrors converts validator errors into field-level messages.
// It returns nil for any other error.
func FormatValidationErrors(err error) []ValidationError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := make([]ValidationError, len(ve))
	for i, fe := range ve {
		out[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag()}
		switch fe.Tag() {
		case "required":
			out[i].Message = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			out[i].Message = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			out[i].Message = fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		case "max":
			out[i].Message = fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
		case "len":
			out[i].Message = fmt.Sprintf("%s must be exactly %s characters long", fe.Field(), fe.Param())
		case "numeric":
			out[i].Message = fmt.Sprintf("%s must contain digits only", fe.Field())
		default:
			out[i].Message = fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
		}
	}
	return out
}

// FirstValidationMessage returns the first field message, or err.Error() for
// non-validation errors.
func FirstValidationMessage(err error) string {
	if msgs := FormatValidationErrors(err); len(msgs) > 0 {
		return msgs[0].Message
	}
	return err.Error()
}
