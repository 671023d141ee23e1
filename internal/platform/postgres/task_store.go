package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/platform/logger"
	"github.com/daylist/daylist-api/internal/store"
)

// taskColumns is the select list shared by every task query.
const taskColumns = `id, tenant_id, user_id, title, status, priority, due_at, completed_at, tags, created_at, updated_at`

// taskViewOrder is the canonical ordering compiled to SQL. It must rank rows
// exactly like domain.CompareViewOrder: status rank ascending, due date
// ascending with undated rows last, priority rank descending, creation time
// descending, then the row ID as a total-order tiebreak.
const taskViewOrder = `CASE status WHEN 'active' THEN 0 WHEN 'completed' THEN 1 WHEN 'archived' THEN 2 ELSE 3 END ASC, ` +
	`due_at ASC NULLS LAST, ` +
	`CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 WHEN 'urgent' THEN 3 ELSE -1 END DESC, ` +
	`created_at DESC, ` +
	`id ASC`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Query implements store.TaskStore.Query
// It retrieves the page of tasks owned by (tenantID, userID) matching the
// predicate, in the canonical view ordering.
func (s *PostgresTaskStore) Query(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	pred store.TaskPredicate,
	page domain.Page,
) ([]*domain.Task, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	page = page.Normalize()
	cond, args := compilePredicate(pred, 3)

	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		WHERE tenant_id = $1 AND user_id = $2 AND %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, taskColumns, cond, taskViewOrder, len(args)+3, len(args)+4)

	queryArgs := make([]any, 0, len(args)+4)
	queryArgs = append(queryArgs, tenantID, userID)
	queryArgs = append(queryArgs, args...)
	queryArgs = append(queryArgs, page.Limit, page.Offset)

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("tenant_id", tenantID.String()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// Return empty slice instead of nil if no tasks matched
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	log.Debug("queried tasks",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(tasks)),
		slog.Int("limit", page.Limit),
		slog.Int("offset", page.Offset))
	return tasks, nil
}

// Count implements store.TaskStore.Count
// It counts the tasks owned by (tenantID, userID) matching the predicate.
// The condition is compiled from the same predicate Query uses, which is
// what keeps list contents and counts in agreement.
func (s *PostgresTaskStore) Count(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	pred store.TaskPredicate,
) (int, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	cond, args := compilePredicate(pred, 3)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM tasks
		WHERE tenant_id = $1 AND user_id = $2 AND %s
	`, cond)

	queryArgs := make([]any, 0, len(args)+2)
	queryArgs = append(queryArgs, tenantID, userID)
	queryArgs = append(queryArgs, args...)

	var count int
	if err := s.db.QueryRowContext(ctx, query, queryArgs...).Scan(&count); err != nil {
		log.Error("failed to count tasks",
			slog.String("error", err.Error()),
			slog.String("tenant_id", tenantID.String()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// WithTxTaskStore implements store.TaskStore.WithTxTaskStore
// It returns a new store instance that executes against the provided
// transaction instead of the base connection.
func (s *PostgresTaskStore) WithTxTaskStore(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// compilePredicate renders the predicate as a SQL condition over task rows,
// with placeholders numbered from argIndex. Clauses join with OR, conditions
// within a clause with AND, mirroring TaskPredicate.Matches: an empty
// predicate compiles to FALSE and a zero clause to TRUE. Due and completion
// comparisons rely on SQL null semantics to exclude rows where the column
// is NULL, matching the in-memory behavior for absent times.
func compilePredicate(pred store.TaskPredicate, argIndex int) (string, []any) {
	if len(pred.Clauses) == 0 {
		return "FALSE", nil
	}

	var args []any
	groups := make([]string, 0, len(pred.Clauses))

	for _, clause := range pred.Clauses {
		var conds []string

		if len(clause.Statuses) > 0 {
			placeholders := make([]string, len(clause.Statuses))
			for i, status := range clause.Statuses {
				placeholders[i] = fmt.Sprintf("$%d", argIndex)
				args = append(args, string(status))
				argIndex++
			}
			conds = append(conds, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
		}

		if clause.DueAtOrAfter != nil {
			conds = append(conds, fmt.Sprintf("due_at >= $%d", argIndex))
			args = append(args, *clause.DueAtOrAfter)
			argIndex++
		}

		if clause.DueBefore != nil {
			conds = append(conds, fmt.Sprintf("due_at < $%d", argIndex))
			args = append(args, *clause.DueBefore)
			argIndex++
		}

		if clause.DueIsNull != nil {
			if *clause.DueIsNull {
				conds = append(conds, "due_at IS NULL")
			} else {
				conds = append(conds, "due_at IS NOT NULL")
			}
		}

		if clause.CompletedAtOrAfter != nil {
			conds = append(conds, fmt.Sprintf("completed_at >= $%d", argIndex))
			args = append(args, *clause.CompletedAtOrAfter)
			argIndex++
		}

		if clause.CompletedBefore != nil {
			conds = append(conds, fmt.Sprintf("completed_at < $%d", argIndex))
			args = append(args, *clause.CompletedBefore)
			argIndex++
		}

		if len(conds) == 0 {
			groups = append(groups, "TRUE")
			continue
		}
		groups = append(groups, "("+strings.Join(conds, " AND ")+")")
	}

	return "(" + strings.Join(groups, " OR ") + ")", args
}

// scanTask maps one result row to a domain task.
func scanTask(rows *sql.Rows) (*domain.Task, error) {
	var (
		task        domain.Task
		status      string
		priority    string
		dueAt       sql.NullTime
		completedAt sql.NullTime
		tagsRaw     []byte
	)

	err := rows.Scan(
		&task.ID,
		&task.TenantID,
		&task.UserID,
		&task.Title,
		&status,
		&priority,
		&dueAt,
		&completedAt,
		&tagsRaw,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)

	if dueAt.Valid {
		t := dueAt.Time
		task.DueAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}

	// Tags are stored as a JSONB array.
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode task tags: %w", err)
		}
	}

	return &task, nil
}
