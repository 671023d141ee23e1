package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daylist/daylist-api/internal/mocks"
	"github.com/daylist/daylist-api/internal/rollover"
)

// MockRolloverControl is a mock implementation of rolloverControl for
// testing
type MockRolloverControl struct {
	Timers       []rollover.TimerInfo
	RefreshCalls int
}

// ActiveTimers implements rolloverControl
func (m *MockRolloverControl) ActiveTimers() []rollover.TimerInfo {
	return m.Timers
}

// ForceRefreshAll implements rolloverControl
func (m *MockRolloverControl) ForceRefreshAll(ctx context.Context) {
	m.RefreshCalls++
}

const testAdminHash = "$2a$10$abcdefghijklmnopqrstuvabcdefghijklmnopqrstuvabcdefghi"

// adminRequest builds a request carrying the given admin token header.
func adminRequest(method, target, token string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(adminTokenHeader, token)
	}
	return req
}

func TestAdminHandler_ListTimers(t *testing.T) {
	t.Parallel()

	fixedUserID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	otherUserID := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	fixedTime := time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC)

	t.Run("returns_armed_timers", func(t *testing.T) {
		t.Parallel()
		scheduler := &MockRolloverControl{
			Timers: []rollover.TimerInfo{
				{UserID: fixedUserID, Timezone: "Asia/Singapore", ScheduledFor: fixedTime},
				{UserID: otherUserID, Timezone: "America/New_York", ScheduledFor: fixedTime.Add(12 * time.Hour)},
			},
		}
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		handler := NewAdminHandler(scheduler, verifier, testAdminHash, testLogger())

		rec := httptest.NewRecorder()
		handler.ListTimers(rec, adminRequest(http.MethodGet, "/api/admin/rollover/timers", "s3cret"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, testAdminHash, verifier.CompareCalledWith.HashedPassword)
		assert.Equal(t, "s3cret", verifier.CompareCalledWith.Password)

		var body RolloverTimersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Timers, 2)
		assert.Equal(t, fixedUserID.String(), body.Timers[0].UserID)
		assert.Equal(t, "Asia/Singapore", body.Timers[0].Timezone)
		assert.True(t, body.Timers[0].ScheduledFor.Equal(fixedTime))
	})

	t.Run("no_timers_serializes_as_empty_array", func(t *testing.T) {
		t.Parallel()
		scheduler := &MockRolloverControl{}
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		handler := NewAdminHandler(scheduler, verifier, testAdminHash, testLogger())

		rec := httptest.NewRecorder()
		handler.ListTimers(rec, adminRequest(http.MethodGet, "/api/admin/rollover/timers", "s3cret"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"timers":[]`)
		assert.Contains(t, rec.Body.String(), `"count":0`)
	})

	t.Run("missing_token_is_unauthorized", func(t *testing.T) {
		t.Parallel()
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		handler := NewAdminHandler(&MockRolloverControl{}, verifier, testAdminHash, testLogger())

		rec := httptest.NewRecorder()
		handler.ListTimers(rec, adminRequest(http.MethodGet, "/api/admin/rollover/timers", ""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Admin token required", decodeErrorBody(t, rec).Error)
		assert.Equal(t, 0, verifier.CompareCallCount)
	})

	t.Run("wrong_token_is_unauthorized", func(t *testing.T) {
		t.Parallel()
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: false}
		handler := NewAdminHandler(&MockRolloverControl{}, verifier, testAdminHash, testLogger())

		rec := httptest.NewRecorder()
		handler.ListTimers(rec, adminRequest(http.MethodGet, "/api/admin/rollover/timers", "wrong"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid admin token", decodeErrorBody(t, rec).Error)
	})

	t.Run("disabled_without_hash", func(t *testing.T) {
		t.Parallel()
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		handler := NewAdminHandler(&MockRolloverControl{}, verifier, "", testLogger())

		rec := httptest.NewRecorder()
		handler.ListTimers(rec, adminRequest(http.MethodGet, "/api/admin/rollover/timers", "s3cret"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 0, verifier.CompareCallCount)
	})
}

func TestAdminHandler_ForceRefresh(t *testing.T) {
	t.Parallel()

	fixedUserID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	otherUserID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	t.Run("refreshes_all_scheduled_users", func(t *testing.T) {
		t.Parallel()
		scheduler := &MockRolloverControl{
			Timers: []rollover.TimerInfo{
				{UserID: fixedUserID, Timezone: "Asia/Singapore"},
				{UserID: otherUserID, Timezone: "UTC"},
			},
		}
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		handler := NewAdminHandler(scheduler, verifier, testAdminHash, testLogger())

		rec := httptest.NewRecorder()
		handler.ForceRefresh(rec, adminRequest(http.MethodPost, "/api/admin/rollover/refresh", "s3cret"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, scheduler.RefreshCalls)

		var body ForceRefreshResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Refreshed)
	})

	t.Run("zero_scheduled_users_still_succeeds", func(t *testing.T) {
		t.Parallel()
		scheduler := &MockRolloverControl{}
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
		handler := NewAdminHandler(scheduler, verifier, testAdminHash, testLogger())

		rec := httptest.NewRecorder()
		handler.ForceRefresh(rec, adminRequest(http.MethodPost, "/api/admin/rollover/refresh", "s3cret"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, scheduler.RefreshCalls)

		var body ForceRefreshResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 0, body.Refreshed)
	})

	t.Run("wrong_token_does_not_refresh", func(t *testing.T) {
		t.Parallel()
		scheduler := &MockRolloverControl{}
		verifier := &mocks.MockPasswordVerifier{ShouldSucceed: false}
		handler := NewAdminHandler(scheduler, verifier, testAdminHash, testLogger())

		rec := httptest.NewRecorder()
		handler.ForceRefresh(rec, adminRequest(http.MethodPost, "/api/admin/rollover/refresh", "wrong"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 0, scheduler.RefreshCalls)
	})

	t.Run("disabled_without_hash", func(t *testing.T) {
		t.Parallel()
		scheduler := &MockRolloverControl{}
		handler := NewAdminHandler(scheduler, &mocks.MockPasswordVerifier{ShouldSucceed: true}, "", testLogger())

		rec := httptest.NewRecorder()
		handler.ForceRefresh(rec, adminRequest(http.MethodPost, "/api/admin/rollover/refresh", "s3cret"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 0, scheduler.RefreshCalls)
	})
}

func TestNewAdminHandler_RequiredDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewAdminHandler(nil, &mocks.MockPasswordVerifier{}, testAdminHash, testLogger())
	})
	assert.Panics(t, func() {
		NewAdminHandler(&MockRolloverControl{}, nil, testAdminHash, testLogger())
	})
	assert.NotPanics(t, func() {
		NewAdminHandler(&MockRolloverControl{}, &mocks.MockPasswordVerifier{}, "", nil)
	})
}
