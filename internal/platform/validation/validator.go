// Package validation wires go-playground/validator into echo so request
// DTOs can declare their constraints with struct tags.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nutrio/nutrio/pkg/apperrors"
)

type Validator struct {
	validate *validator.Validate
}

// New creates a request validator. Field names in error messages come from
// the json tag, not the Go field name, so clients see the names they sent.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate implements echo.Validator. Constraint violations surface as a
// single 400 with the offending fields listed.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	ok := false
	if verrs, ok = err.(validator.ValidationErrors); !ok {
		return apperrors.Wrap(err, apperrors.CodeValidationFailed, "Invalid request")
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return apperrors.Validation("Invalid request: " + strings.Join(fields, ", "))
}
