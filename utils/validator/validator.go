// Package validator wraps go-playground/validator with the portal's rules
// and user-facing error messages.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules
type Validator struct {
	validator *validator.Validate
}

// New creates a new validator instance with custom rules
func New() *Validator {
	validate := validator.New()

	// Use JSON field names for validation error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Role validation: the portal only knows these two roles
	validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		return role == "user" || role == "admin"
	})

	return &Validator{
		validator: validate,
	}
}

// Validate validates a struct and returns a ValidationError on failure
func (v *Validator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return NewValidationError(err.(validator.ValidationErrors))
	}
	return nil
}

// ValidationError represents a validation error with user-friendly messages
type ValidationError struct {
	Errors map[string]string `json:"errors"`

	// fields preserves the order validation failed in, so Message is
	// deterministic.
	fields []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	var messages []string
	for field, message := range e.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", field, message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// Message returns the first failure's human-readable message, matching the
// wording the admin UI shows to operators.
func (e *ValidationError) Message() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}
	return e.Errors[e.fields[0]]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// NewValidationError creates a ValidationError from validator.ValidationErrors
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	errors := make(map[string]string)
	fields := make([]string, 0, len(errs))

	for _, err := range errs {
		field := err.Field()
		fields = append(fields, field)

		switch err.Tag() {
		case "required":
			errors[field] = "All fields are required"
		case "email":
			errors[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			errors[field] = fmt.Sprintf("%s must be at least %s characters long", capitalize(field), err.Param())
		case "user_role":
			errors[field] = `Role must be either "user" or "admin"`
		default:
			errors[field] = fmt.Sprintf("%s is invalid", field)
		}
	}

	return &ValidationError{Errors: errors, fields: fields}
}
