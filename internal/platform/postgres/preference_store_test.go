package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/store"
)

func newMockPreferenceDB(t *testing.T) (*PostgresPreferenceStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresPreferenceStore(db, testLogger()), mock
}

func preferenceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"user_id", "timezone", "completed_task_visibility", "created_at", "updated_at",
	})
}

func TestPreferenceStoreGet_ReturnsStored(t *testing.T) {
	s, mock := newMockPreferenceDB(t)
	userID := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .+ FROM time_preferences\s+WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(preferenceRows().
			AddRow(userID.String(), "Asia/Singapore", "7days", created, created))

	pref, err := s.Get(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, userID, pref.UserID)
	assert.Equal(t, "Asia/Singapore", pref.Timezone)
	assert.Equal(t, domain.VisibilitySevenDays, pref.CompletedVisibility)
	assert.True(t, pref.CreatedAt.Equal(created))
}

func TestPreferenceStoreGet_NotFound(t *testing.T) {
	s, mock := newMockPreferenceDB(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM time_preferences`).
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), uuid.New())

	assert.ErrorIs(t, err, store.ErrPreferenceNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPreferenceStoreUpsert_SavesPreference(t *testing.T) {
	s, mock := newMockPreferenceDB(t)
	userID := uuid.New()
	pref, err := domain.NewTimePreference(userID, "America/New_York", domain.VisibilityThirtyDays)
	require.NoError(t, err)

	mock.ExpectExec(`(?s)INSERT INTO time_preferences.+ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs(userID, "America/New_York", "30days", pref.CreatedAt, pref.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Upsert(context.Background(), pref))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceStoreUpsert_RejectsInvalidWithoutQuery(t *testing.T) {
	s, mock := newMockPreferenceDB(t)

	pref := &domain.TimePreference{
		UserID:              uuid.New(),
		Timezone:            "Not/AZone",
		CompletedVisibility: domain.VisibilitySevenDays,
	}

	err := s.Upsert(context.Background(), pref)

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	// No SQL ran for the invalid preference.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceStoreUpsert_MapsForeignKeyViolation(t *testing.T) {
	s, mock := newMockPreferenceDB(t)
	pref, err := domain.NewTimePreference(uuid.New(), "UTC", domain.VisibilityNone)
	require.NoError(t, err)

	mock.ExpectExec(`(?s)INSERT INTO time_preferences`).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "time_preferences_user_id_fkey"})

	err = s.Upsert(context.Background(), pref)

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPreferenceStoreList_ReturnsAll(t *testing.T) {
	s, mock := newMockPreferenceDB(t)
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT .+ FROM time_preferences\s+ORDER BY user_id`).
		WillReturnRows(preferenceRows().
			AddRow(uuid.New().String(), "UTC", "none", now, now).
			AddRow(uuid.New().String(), "Asia/Tokyo", "1day", now, now))

	prefs, err := s.List(context.Background())

	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, "UTC", prefs[0].Timezone)
	assert.Equal(t, domain.VisibilityOneDay, prefs[1].CompletedVisibility)
}

func TestPreferenceStoreList_EmptyIsNotNil(t *testing.T) {
	s, mock := newMockPreferenceDB(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM time_preferences`).
		WillReturnRows(preferenceRows())

	prefs, err := s.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, prefs)
	assert.Empty(t, prefs)
}
