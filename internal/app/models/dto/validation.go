package dto

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// HandleValidationError converts a gin binding error into an ErrorDetail.
// Field-level failures are listed under details.errors.
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		list := NewValidationErrors()
		for _, fe := range verrs {
			list.AddError(jsonFieldName(fe), formatValidationError(fe))
		}
		detail := NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(list)
		if len(list.Errors) == 1 {
			detail.WithField(list.Errors[0].Field)
			detail.Message = list.Errors[0].Message
		}
		return detail
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return NewErrorDetail(ErrorCodeBadRequest, "Malformed JSON body")
	case errors.As(err, &typeErr):
		return NewErrorDetail(ErrorCodeBadRequest, "Invalid value type").WithField(typeErr.Field)
	}

	return NewErrorDetail(ErrorCodeBadRequest, "Invalid request format").WithDetails(err.Error())
}

func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return ""
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonFieldName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if e.Kind().String() == "string" {
			return field + " must be at least " + e.Param() + " characters"
		}
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "uuid":
		return field + " must be a valid UUID"
	case "notblank":
		return field + " must not be blank"
	case "currency":
		return field + " must be a three-letter currency code"
	default:
		return field + " validation failed: " + e.Tag()
	}
}
