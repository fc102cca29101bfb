// Package services contains the persistence stores and the game-facing
// business services built on them.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is not found
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create a duplicate entity
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when a request has no valid principal
	ErrUnauthorized = errors.New("authentication required")

	// ErrInvalidToken is returned for malformed or wrongly-typed tokens
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for structurally valid but expired tokens
	ErrTokenExpired = errors.New("token expired")

	// ErrSessionRevoked is returned when a refresh token was revoked server-side
	ErrSessionRevoked = errors.New("session revoked")

	// ErrForbidden is returned when the principal may not perform the action
	ErrForbidden = errors.New("forbidden")

	// ErrExternalService is returned when an upstream dependency fails
	ErrExternalService = errors.New("external service error")
)

// ValidationError wraps field-specific validation errors
type ValidationError struct {
	Field   string
	Message string
	Details map[string]string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// WithDetail attaches a key/value pair surfaced in the error response body.
func (e *ValidationError) WithDetail(key, value string) *ValidationError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
