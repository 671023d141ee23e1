package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
)

// TaskStore defines the read interface the view engine depends on. Task
// creation and mutation belong to the collaborating task service; this
// subsystem only queries.
// Version: 1.0
type TaskStore interface {
	// Query retrieves the tasks owned by (tenantID, userID) that match the
	// predicate, in the canonical view ordering: active before completed
	// before archived, then due date ascending with undated tasks last,
	// then priority descending, then creation time descending. The ordering
	// is total, so paging through a stable data set never skips or repeats
	// a row.
	Query(ctx context.Context, tenantID, userID uuid.UUID, pred TaskPredicate, page domain.Page) ([]*domain.Task, error)

	// Count returns the number of tasks owned by (tenantID, userID) that
	// match the predicate. Count and Query evaluate the same predicate
	// against the same rows, so for any predicate
	// len(all pages of Query) == Count.
	Count(ctx context.Context, tenantID, userID uuid.UUID, pred TaskPredicate) (int, error)

	// WithTxTaskStore returns a new TaskStore instance that uses the provided
	// transaction. This allows for multiple operations to be executed within
	// a single transaction. The transaction should be created and managed by
	// the caller (typically a service).
	WithTxTaskStore(tx *sql.Tx) TaskStore
}
