package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
)

// PreferenceStore defines the interface for time preference persistence.
// Version: 1.0
type PreferenceStore interface {
	// Get retrieves the time preference for a user.
	// Returns ErrPreferenceNotFound if the user has never saved one;
	// callers on the read path substitute domain.DefaultTimePreference
	// rather than failing.
	Get(ctx context.Context, userID uuid.UUID) (*domain.TimePreference, error)

	// Upsert saves the preference, inserting on first write and updating
	// thereafter. The preference must be valid according to domain
	// validation rules; returns ErrInvalidEntity wrapping the validation
	// failure otherwise.
	Upsert(ctx context.Context, pref *domain.TimePreference) error

	// List retrieves every stored preference. The rollover scheduler uses
	// this at startup to arm a midnight timer for each known user.
	List(ctx context.Context) ([]*domain.TimePreference, error)

	// WithTxPreferenceStore returns a new PreferenceStore instance that uses
	// the provided transaction. This allows for multiple operations to be
	// executed within a single transaction. The transaction should be
	// created and managed by the caller (typically a service).
	WithTxPreferenceStore(tx *sql.Tx) PreferenceStore
}
