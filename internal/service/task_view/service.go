// Package task_view is the single place where a filter name becomes a query.
// Both the list path and the count path build their predicate through the
// same clause constructors from the same boundary snapshot, which is what
// makes a filter's count and its list structurally incapable of disagreeing.
package task_view

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
)

// Engine produces filtered task views and their counts.
type Engine interface {
	// ListTasks returns one page of the named filter's tasks together with
	// the filter's total count.
	//
	// The total is computed from the same predicate and the same boundary
	// snapshot as the page, so summing page sizes across all pages always
	// reproduces TotalCount, and TotalCount always equals the matching
	// field of Counts taken against the same snapshot.
	//
	// Parameters:
	//   - tenantID, userID: ownership scope; every query is bound to both
	//   - filter: one of the domain.FilterName values
	//   - visibilityDays: completed-task window, one of 0, 1, 7, 30
	//   - page: pagination window, normalized before use
	//
	// Returns a validation error (wrapping domain.ErrValidation) for an
	// unknown filter, an out-of-range visibility window, or a nil ID,
	// before any query runs.
	ListTasks(
		ctx context.Context,
		tenantID, userID uuid.UUID,
		filter domain.FilterName,
		visibilityDays int,
		page domain.Page,
	) (*domain.TaskPage, error)

	// Counts returns the per-filter task counts for one user.
	//
	// The boundary snapshot is resolved exactly once and reused for every
	// sub-count, so a request can never straddle two definitions of
	// "today". Focus is assembled as Today + Overdue rather than queried;
	// the two clause sets are disjoint by construction, which makes the
	// arithmetic exact.
	Counts(
		ctx context.Context,
		tenantID, userID uuid.UUID,
		visibilityDays int,
	) (*domain.FilterCounts, error)
}

// ErrCompute indicates an internal failure while building or executing view
// queries. It is never returned for caller mistakes; those surface as
// domain.ErrValidation wrappers.
var ErrCompute = errors.New("view computation failed")

// ServiceError wraps errors from the view engine with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "list_tasks", "counts")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewListTasksError returns a new ServiceError for the list_tasks operation.
func NewListTasksError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "list_tasks",
		Message:   message,
		Err:       err,
	}
}

// NewCountsError returns a new ServiceError for the counts operation.
func NewCountsError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "counts",
		Message:   message,
		Err:       err,
	}
}
