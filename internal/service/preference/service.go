// Package preference orchestrates reads and writes of user time
// preferences. A preference write moves the user's date boundaries
// immediately, so Update is responsible for the full consequence chain:
// persist, invalidate the boundary memo and cached views, re-arm the
// midnight timer, and notify listeners.
package preference

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
)

// Service reads and writes time preferences.
type Service interface {
	// Get returns the user's stored preference, or the default
	// (UTC, completed tasks hidden) if none has ever been saved.
	Get(ctx context.Context, userID uuid.UUID) (*domain.TimePreference, error)

	// Update validates and persists a new timezone and visibility window
	// for the user, then synchronously invalidates the user's boundary
	// memo and cached view results and replaces their midnight timer.
	// Listeners are notified best-effort after the write.
	//
	// Returns a validation error (wrapping domain.ErrValidation) for an
	// unknown timezone or visibility value; nothing is persisted in that
	// case.
	Update(
		ctx context.Context,
		userID uuid.UUID,
		timezone string,
		visibility domain.CompletedVisibility,
	) (*domain.TimePreference, error)
}

// Rescheduler re-arms a user's midnight timer after their zone changes.
// Satisfied by the rollover scheduler.
type Rescheduler interface {
	Schedule(ctx context.Context, userID uuid.UUID) error
}

// ServiceError wraps errors from preference operations with context.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("preference service %s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("preference service %s: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewGetError creates a ServiceError for Get operation failures.
func NewGetError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "get_preference", Message: message, Err: err}
}

// NewUpdateError creates a ServiceError for Update operation failures.
func NewUpdateError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "update_preference", Message: message, Err: err}
}
