package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	// ErrMissingField and ErrMalformedField are both validation failures.
	ErrMissingField = fmt.Errorf("%w: required field missing", ErrValidation)

	ErrMalformedField = fmt.Errorf("%w: field is not a valid number", ErrValidation)

	ErrInternalServer = errors.New("internal server error")

	ErrPublish = errors.New("event publish failed")

	ErrUnauthorized = errors.New("unauthorized")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

// NewMissingFieldError reports the first absent applicant field.
func NewMissingFieldError(field string) error {
	return &ValidationError{Field: field, Message: "is required", Cause: ErrMissingField}
}

func NewMalformedFieldError(field string, cause error) error {
	return &ValidationError{Field: field, Message: "must be a number", Cause: fmt.Errorf("%w: %w", ErrMalformedField, cause)}
}

// FieldOf returns the field named by a validation error, or "" when err carries none.
func FieldOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapPublishError(cause error, message string) error {
	return &AppError{
		Code:    "PUBLISH_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrPublish, cause),
	}
}
