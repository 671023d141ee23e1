package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CompletedVisibility is the user-configurable rolling period during which
// completed tasks remain visible in filtered views before being hidden.
type CompletedVisibility string

// Supported visibility windows
const (
	VisibilityNone       CompletedVisibility = "none"
	VisibilityOneDay     CompletedVisibility = "1day"
	VisibilitySevenDays  CompletedVisibility = "7days"
	VisibilityThirtyDays CompletedVisibility = "30days"
)

// Common validation errors for TimePreference
var (
	ErrPreferenceUserIDEmpty   = errors.New("time preference user ID cannot be empty")
	ErrPreferenceTimezoneEmpty = errors.New("time preference timezone cannot be empty")
)

// DefaultTimezone is used whenever a user's timezone is missing or cannot
// be resolved. A consistently-wrong-but-stable zone is less harmful than a
// failed read, so callers fall back here instead of aborting.
const DefaultTimezone = "UTC"

// Days maps the visibility enum to its day count: none→0, 1day→1,
// 7days→7, 30days→30. The mapping happens once at the service boundary;
// downstream code only ever sees the integer.
func (v CompletedVisibility) Days() int {
	switch v {
	case VisibilityOneDay:
		return 1
	case VisibilitySevenDays:
		return 7
	case VisibilityThirtyDays:
		return 30
	default:
		return 0
	}
}

// Valid reports whether the visibility is one of the known values.
func (v CompletedVisibility) Valid() bool {
	switch v {
	case VisibilityNone, VisibilityOneDay, VisibilitySevenDays, VisibilityThirtyDays:
		return true
	default:
		return false
	}
}

// ParseCompletedVisibility converts a stored or submitted string into a
// CompletedVisibility. Returns ErrInvalidVisibility for anything outside
// the closed set.
func ParseCompletedVisibility(s string) (CompletedVisibility, error) {
	v := CompletedVisibility(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidVisibility, s)
	}
	return v, nil
}

// VisibilityFromDays converts a day count back to the enum. Only the four
// supported counts are accepted; anything else is a validation failure.
func VisibilityFromDays(days int) (CompletedVisibility, error) {
	switch days {
	case 0:
		return VisibilityNone, nil
	case 1:
		return VisibilityOneDay, nil
	case 7:
		return VisibilitySevenDays, nil
	case 30:
		return VisibilityThirtyDays, nil
	default:
		return "", fmt.Errorf("%w: %d days", ErrInvalidVisibility, days)
	}
}

// TimePreference holds the per-user settings that drive date boundary
// computation: the IANA timezone the user observes and how long completed
// tasks remain visible. This core reads preferences; writes arrive through
// the preference service, which must invalidate boundary memos and cached
// view results.
type TimePreference struct {
	UserID              uuid.UUID           `json:"user_id"`
	Timezone            string              `json:"timezone"`
	CompletedVisibility CompletedVisibility `json:"completed_task_visibility"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// NewTimePreference creates a TimePreference for the given user.
// Returns an error if validation fails.
func NewTimePreference(userID uuid.UUID, timezone string, visibility CompletedVisibility) (*TimePreference, error) {
	now := time.Now().UTC()
	pref := &TimePreference{
		UserID:              userID,
		Timezone:            timezone,
		CompletedVisibility: visibility,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := pref.Validate(); err != nil {
		return nil, err
	}

	return pref, nil
}

// DefaultTimePreference returns the preference used when a user has never
// saved one: UTC with completed tasks hidden.
func DefaultTimePreference(userID uuid.UUID) *TimePreference {
	return &TimePreference{
		UserID:              userID,
		Timezone:            DefaultTimezone,
		CompletedVisibility: VisibilityNone,
	}
}

// Validate checks if the TimePreference has valid data. The timezone must be
// a loadable IANA identifier; write paths reject malformed zones here while
// read paths degrade to UTC instead.
func (p *TimePreference) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrPreferenceUserIDEmpty
	}

	if p.Timezone == "" {
		return ErrPreferenceTimezoneEmpty
	}

	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, p.Timezone)
	}

	if !p.CompletedVisibility.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidVisibility, p.CompletedVisibility)
	}

	return nil
}

// Location resolves the preference's timezone, falling back to UTC when the
// identifier is malformed.
func (p *TimePreference) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
