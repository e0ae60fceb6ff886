// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is the base error for entity validation failures. The
	// entity-specific errors below wrap it, so errors.Is(err, ErrValidation)
	// matches any of them.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is returned when the acting user is not allowed to
	// perform the operation, e.g. touching another user's notification.
	ErrForbidden = errors.New("operation forbidden")
)
