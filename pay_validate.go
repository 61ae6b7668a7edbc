package payluk

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// Validate ensures the required checkout inputs are present and non-blank
// after trimming. Fields are checked in declaration order, so a missing
// payment token is reported before a missing reference or redirect URL.
func (in PayInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return NewInvalidInputError(normalizeValidationError(err))
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return strings.TrimSpace(value) != ""
	}); err != nil {
		panic(err)
	}

	return v
}

func normalizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}
	first := validationErrs[0]
	return fmt.Sprintf("%s %s", first.Field(), validationMessage(first))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return "is required"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
