package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"chat-api/pkg/apierror"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks a request DTO against its validate tags and converts the
// first failure into a 400 APIError with a client-readable message.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierror.Validation("invalid request body")
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())

	var message string
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required", field)
	case "email":
		message = fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		message = fmt.Sprintf("%s must have at least %s characters or elements", field, fe.Param())
	case "max":
		message = fmt.Sprintf("%s must have at most %s characters or elements", field, fe.Param())
	case "len", "hexadecimal":
		message = fmt.Sprintf("%s contains an invalid identifier", field)
	default:
		message = fmt.Sprintf("%s is invalid", field)
	}

	return apierror.Validation(message)
}
