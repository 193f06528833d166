// utils/validation.go
package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Tags whose failure is a value constraint rather than a malformed request.
var constraintTags = map[string]bool{
	"price":    true,
	"duration": true,
	"rating":   true,
}

var emailValidator = validator.New()

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			name = strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	validators := map[string]validator.Func{
		"price": func(fl validator.FieldLevel) bool {
			_, err := ParsePrice(fl.Field().String())
			return err == nil
		},
		"duration": func(fl validator.FieldLevel) bool {
			_, err := ParseSpan(fl.Field().String())
			return err == nil
		},
		"isodate": func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		},
		"clock": func(fl validator.FieldLevel) bool {
			_, err := ParseTimeOfDay(fl.Field().String())
			return err == nil
		},
		"rating": func(fl validator.FieldLevel) bool {
			_, err := ParseRating(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}

// ValidEmail reports whether value is a syntactically valid address.
func ValidEmail(value string) bool {
	return emailValidator.Var(value, "required,email") == nil
}

// BindingErrors converts a binding failure into per-field messages. The second
// result is true when every failure was a value constraint.
func BindingErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := make(map[string]string, len(verrs))
	constraint := true
	for _, fe := range verrs {
		fields[fe.Field()] = bindingMessage(fe)
		if !constraintTags[fe.Tag()] {
			constraint = false
		}
	}
	return fields, constraint
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "uuid":
		return "Must be a valid UUID."
	case "price":
		return "Enter a non-negative amount with at most 2 decimal places and 6 digits before the point."
	case "duration":
		return "Enter a valid duration, e.g. 01:00:00."
	case "isodate":
		return "Enter a valid date."
	case "clock":
		return "Enter a valid time."
	case "rating":
		return fmt.Sprintf("Rating must be a whole number from %d to %d.", MinRating, MaxRating)
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", fe.Param())
	default:
		return "Invalid value."
	}
}
