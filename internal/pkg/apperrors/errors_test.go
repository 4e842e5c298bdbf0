package apperrors

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "With Code",
			appError: &AppError{
				Code:    "TEST_CODE",
				Message: "This is a test error",
			},
			expected: "[TEST_CODE] This is a test error",
		},
		{
			name: "Without Code",
			appError: &AppError{
				Message: "This is a test error without code",
			},
			expected: "This is a test error without code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestMissingFieldError(t *testing.T) {
	err := NewMissingFieldError("email")

	assert.ErrorIs(t, err, ErrMissingField)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrMalformedField)
	assert.Equal(t, "email", FieldOf(err))
	assert.Equal(t, "validation failed for field 'email': is required", err.Error())
}

func TestMalformedFieldError(t *testing.T) {
	_, parseErr := strconv.ParseFloat("abc", 64)
	err := NewMalformedFieldError("age", parseErr)

	assert.ErrorIs(t, err, ErrMalformedField)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Equal(t, "age", FieldOf(err))
}

func TestWrapPublishError(t *testing.T) {
	cause := errors.New("channel closed")
	err := WrapPublishError(cause, "could not publish narration")

	assert.ErrorIs(t, err, ErrPublish)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[PUBLISH_ERROR] could not publish narration", err.Error())
	assert.Empty(t, FieldOf(err))
}
