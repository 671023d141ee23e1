package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a request or entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFilter is returned when a filter name is not one of the
	// known task views.
	ErrInvalidFilter = fmt.Errorf("%w: unknown filter", ErrValidation)

	// ErrInvalidVisibility is returned when a completed-task visibility
	// value is outside the closed set of supported windows.
	ErrInvalidVisibility = fmt.Errorf("%w: invalid completed-task visibility", ErrValidation)

	// ErrInvalidPagination is returned when a limit or offset is out of range.
	ErrInvalidPagination = fmt.Errorf("%w: invalid pagination", ErrValidation)

	// ErrInvalidTimezone is returned when an IANA timezone identifier cannot
	// be loaded. Read paths absorb this by falling back to UTC; write paths
	// surface it to the caller.
	ErrInvalidTimezone = fmt.Errorf("%w: invalid timezone identifier", ErrValidation)

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
