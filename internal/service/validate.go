// file: internal/service/validate.go
package service

import (
	"GestionBC/internal/core/port"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate reads the same `binding` tags gin checks on the HTTP side, so callers
// that bypass the router get the same rules.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}

// fieldsRule accepts a non-empty partial update with non-empty column names.
const fieldsRule = "required,min=1,dive,keys,required,max=64,endkeys"

// validateRequest checks a request struct. The returned error wraps both
// port.ErrInvalidInput and the validator.ValidationErrors.
func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", port.ErrInvalidInput, err)
	}
	return nil
}

// validateFields checks the field map of a partial update before it reaches the
// repository, which then checks names and types against the table.
func validateFields(fields map[string]any) error {
	if err := validate.Var(fields, fieldsRule); err != nil {
		return fmt.Errorf("%w: fields: %w", port.ErrInvalidInput, err)
	}
	return nil
}
