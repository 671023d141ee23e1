package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
//
// The default implementation evaluates predicates against the in-memory
// Tasks slice and sorts with domain.CompareViewOrder, the same canonical
// ordering the SQL store produces. Tests that seed Tasks therefore exercise
// real filtering and paging semantics without a database.
type MockTaskStore struct {
	// Function fields for customizable behavior
	QueryFn func(ctx context.Context, tenantID, userID uuid.UUID, pred store.TaskPredicate, page domain.Page) ([]*domain.Task, error)
	CountFn func(ctx context.Context, tenantID, userID uuid.UUID, pred store.TaskPredicate) (int, error)

	// Data for default implementation
	Tasks      []*domain.Task
	QueryError error
	CountError error

	// Call tracking for test verification
	mu            sync.Mutex
	QueryCalls    int
	CountCalls    int
	LastPredicate store.TaskPredicate
	LastPage      domain.Page
}

// Ensure MockTaskStore implements store.TaskStore
var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a mock store seeded with the given tasks.
func NewMockTaskStore(tasks ...*domain.Task) *MockTaskStore {
	return &MockTaskStore{
		Tasks: tasks,
	}
}

// Query implements the TaskStore interface
func (m *MockTaskStore) Query(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	pred store.TaskPredicate,
	page domain.Page,
) ([]*domain.Task, error) {
	m.mu.Lock()
	m.QueryCalls++
	m.LastPredicate = pred
	m.LastPage = page
	m.mu.Unlock()

	if m.QueryFn != nil {
		return m.QueryFn(ctx, tenantID, userID, pred, page)
	}

	if m.QueryError != nil {
		return nil, m.QueryError
	}

	matched := m.match(tenantID, userID, pred)
	sort.SliceStable(matched, func(i, j int) bool {
		return domain.CompareViewOrder(matched[i], matched[j]) < 0
	})

	page = page.Normalize()
	if page.Offset >= len(matched) {
		return []*domain.Task{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[page.Offset:end], nil
}

// Count implements the TaskStore interface
func (m *MockTaskStore) Count(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	pred store.TaskPredicate,
) (int, error) {
	m.mu.Lock()
	m.CountCalls++
	m.LastPredicate = pred
	m.mu.Unlock()

	if m.CountFn != nil {
		return m.CountFn(ctx, tenantID, userID, pred)
	}

	if m.CountError != nil {
		return 0, m.CountError
	}

	return len(m.match(tenantID, userID, pred)), nil
}

// match applies ownership scoping and predicate evaluation, mirroring the
// WHERE clause the SQL store builds.
func (m *MockTaskStore) match(tenantID, userID uuid.UUID, pred store.TaskPredicate) []*domain.Task {
	var matched []*domain.Task
	for _, t := range m.Tasks {
		if t.TenantID != tenantID || t.UserID != userID {
			continue
		}
		if !pred.Matches(t) {
			continue
		}
		matched = append(matched, t)
	}
	return matched
}

// Calls returns the query and count call counts recorded so far.
func (m *MockTaskStore) Calls() (queries, counts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueryCalls, m.CountCalls
}

// Reset clears call tracking between test phases.
func (m *MockTaskStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls = 0
	m.CountCalls = 0
	m.LastPredicate = store.TaskPredicate{}
	m.LastPage = domain.Page{}
}

// WithTxTaskStore implements the TaskStore interface for transaction support
func (m *MockTaskStore) WithTxTaskStore(tx *sql.Tx) store.TaskStore {
	// For mock purposes, just return the same mock
	return m
}
