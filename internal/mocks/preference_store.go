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

// MockPreferenceStore implements store.PreferenceStore for testing
type MockPreferenceStore struct {
	// Function fields for customizable behavior
	GetFn    func(ctx context.Context, userID uuid.UUID) (*domain.TimePreference, error)
	UpsertFn func(ctx context.Context, pref *domain.TimePreference) error
	ListFn   func(ctx context.Context) ([]*domain.TimePreference, error)

	// Data for default implementation, keyed by user ID
	Prefs       map[uuid.UUID]*domain.TimePreference
	GetError    error
	UpsertError error
	ListError   error

	// Call tracking for test verification
	mu          sync.Mutex
	GetCalls    int
	UpsertCalls int
	LastUpsert  *domain.TimePreference
}

// Ensure MockPreferenceStore implements store.PreferenceStore
var _ store.PreferenceStore = (*MockPreferenceStore)(nil)

// NewMockPreferenceStore creates a new mock store with initialized defaults
func NewMockPreferenceStore(prefs ...*domain.TimePreference) *MockPreferenceStore {
	m := &MockPreferenceStore{
		Prefs: make(map[uuid.UUID]*domain.TimePreference),
	}
	for _, p := range prefs {
		m.Prefs[p.UserID] = p
	}
	return m
}

// Get implements the PreferenceStore interface
func (m *MockPreferenceStore) Get(ctx context.Context, userID uuid.UUID) (*domain.TimePreference, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()

	if m.GetFn != nil {
		return m.GetFn(ctx, userID)
	}

	if m.GetError != nil {
		return nil, m.GetError
	}

	pref, exists := m.Prefs[userID]
	if !exists {
		return nil, store.ErrPreferenceNotFound
	}

	return pref, nil
}

// Upsert implements the PreferenceStore interface
func (m *MockPreferenceStore) Upsert(ctx context.Context, pref *domain.TimePreference) error {
	m.mu.Lock()
	m.UpsertCalls++
	m.LastUpsert = pref
	m.mu.Unlock()

	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, pref)
	}

	if m.UpsertError != nil {
		return m.UpsertError
	}

	if err := pref.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	m.Prefs[pref.UserID] = pref
	return nil
}

// List implements the PreferenceStore interface
func (m *MockPreferenceStore) List(ctx context.Context) ([]*domain.TimePreference, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}

	if m.ListError != nil {
		return nil, m.ListError
	}

	prefs := make([]*domain.TimePreference, 0, len(m.Prefs))
	for _, p := range m.Prefs {
		prefs = append(prefs, p)
	}
	// Map iteration order is random; sort for deterministic tests.
	sort.Slice(prefs, func(i, j int) bool {
		return prefs[i].UserID.String() < prefs[j].UserID.String()
	})
	return prefs, nil
}

// WithTxPreferenceStore implements the PreferenceStore interface for transaction support
func (m *MockPreferenceStore) WithTxPreferenceStore(tx *sql.Tx) store.PreferenceStore {
	// For mock purposes, just return the same mock
	return m
}
