package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/platform/logger"
	"github.com/daylist/daylist-api/internal/store"
)

// PostgresPreferenceStore implements the store.PreferenceStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPreferenceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPreferenceStore creates a new PostgreSQL implementation of the
// PreferenceStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresPreferenceStore(db store.DBTX, logger *slog.Logger) *PostgresPreferenceStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPreferenceStore{
		db:     db,
		logger: logger.With(slog.String("component", "preference_store")),
	}
}

// Ensure PostgresPreferenceStore implements store.PreferenceStore interface
var _ store.PreferenceStore = (*PostgresPreferenceStore)(nil)

// Get implements store.PreferenceStore.Get
// It retrieves the time preference for a user.
// Returns store.ErrPreferenceNotFound if the user has never saved one.
func (s *PostgresPreferenceStore) Get(ctx context.Context, userID uuid.UUID) (*domain.TimePreference, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, timezone, completed_task_visibility, created_at, updated_at
		FROM time_preferences
		WHERE user_id = $1
	`

	var pref domain.TimePreference
	var visibility string

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&pref.UserID,
		&pref.Timezone,
		&visibility,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("time preference not found", slog.String("user_id", userID.String()))
			return nil, store.ErrPreferenceNotFound
		}
		log.Error("failed to get time preference",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	pref.CompletedVisibility = domain.CompletedVisibility(visibility)

	return &pref, nil
}

// Upsert implements store.PreferenceStore.Upsert
// It saves the preference, inserting on first write and updating thereafter.
// The stored creation time is preserved across updates.
// Returns store.ErrInvalidEntity wrapping the validation failure if the
// preference is invalid.
func (s *PostgresPreferenceStore) Upsert(ctx context.Context, pref *domain.TimePreference) error {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate preference data
	if err := pref.Validate(); err != nil {
		log.Warn("preference validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", pref.UserID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO time_preferences (user_id, timezone, completed_task_visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
		    completed_task_visibility = EXCLUDED.completed_task_visibility,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		pref.UserID,
		pref.Timezone,
		string(pref.CompletedVisibility),
		pref.CreatedAt,
		pref.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to upsert time preference",
			slog.String("error", err.Error()),
			slog.String("user_id", pref.UserID.String()))
		return MapError(err)
	}

	log.Info("time preference saved",
		slog.String("user_id", pref.UserID.String()),
		slog.String("timezone", pref.Timezone),
		slog.String("visibility", string(pref.CompletedVisibility)))
	return nil
}

// List implements store.PreferenceStore.List
// It retrieves every stored preference, ordered by user ID for determinism.
// The rollover scheduler uses this at startup to arm a timer per known user.
func (s *PostgresPreferenceStore) List(ctx context.Context) ([]*domain.TimePreference, error) {
	// Get the logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, timezone, completed_task_visibility, created_at, updated_at
		FROM time_preferences
		ORDER BY user_id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list time preferences",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	var prefs []*domain.TimePreference
	for rows.Next() {
		var pref domain.TimePreference
		var visibility string

		err := rows.Scan(
			&pref.UserID,
			&pref.Timezone,
			&visibility,
			&pref.CreatedAt,
			&pref.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan preference row",
				slog.String("error", err.Error()))
			return nil, err
		}

		pref.CompletedVisibility = domain.CompletedVisibility(visibility)
		prefs = append(prefs, &pref)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	// Return empty slice instead of nil if no preferences stored
	if prefs == nil {
		prefs = []*domain.TimePreference{}
	}

	log.Debug("listed time preferences", slog.Int("count", len(prefs)))
	return prefs, nil
}

// WithTxPreferenceStore implements store.PreferenceStore.WithTxPreferenceStore
// It returns a new store instance that executes against the provided
// transaction instead of the base connection.
func (s *PostgresPreferenceStore) WithTxPreferenceStore(tx *sql.Tx) store.PreferenceStore {
	return &PostgresPreferenceStore{
		db:     tx,
		logger: s.logger,
	}
}
