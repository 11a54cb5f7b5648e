package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validationMessage flattens validator errors into one client-facing line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "gte", "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", strings.ToLower(fe.Field()), fe.Param()))
		case "lte", "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", strings.ToLower(fe.Field()), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// validateStruct runs the handler's validator over a decoded request.
func (h *Handler) validateStruct(v interface{}) error {
	return h.validator.Struct(v)
}
