package timewindow

import (
	"errors"
	"fmt"
	"time"
)

// Drift tolerance for the today span. A calendar day is nominally 24h but a
// daylight-saving transition legitimately produces a 23h or 25h day; anything
// outside this band indicates a computation bug, not a DST artifact.
const (
	minDaySpan = 22 * time.Hour
	maxDaySpan = 26 * time.Hour
)

// Boundary ordering errors returned by Validate.
var (
	ErrBoundaryOrder = errors.New("boundary instants out of order")
	ErrBoundarySpan  = errors.New("today span outside tolerated range")
)

// Boundaries is an immutable snapshot of the absolute instants that mark a
// user's logical day. TodayStart is the user's local midnight expressed as an
// absolute instant; TodayEnd is the following local midnight, so the span is
// 23h or 25h across a daylight-saving transition. CompletedCutoff is the
// oldest completion instant still visible under the user's completed-task
// window; it equals TodayStart when the window is zero days.
type Boundaries struct {
	TodayStart      time.Time `json:"today_start"`
	TodayEnd        time.Time `json:"today_end"`
	TomorrowStart   time.Time `json:"tomorrow_start"`
	WeekFromNow     time.Time `json:"week_from_now"`
	CompletedCutoff time.Time `json:"completed_cutoff"`

	// Timezone and WindowDays record the inputs the snapshot was derived
	// from, for diagnostics and cache keys.
	Timezone   string `json:"timezone"`
	WindowDays int    `json:"window_days"`
}

// Compute derives the date boundaries observed in loc at the instant now.
// The calendar date is taken from now as seen in loc, never from the server's
// local zone. windowDays is the completed-task visibility window; negative
// values are treated as zero. All day arithmetic goes through time.Date so
// daylight-saving transitions normalize correctly.
func Compute(now time.Time, loc *time.Location, windowDays int) Boundaries {
	if loc == nil {
		loc = time.UTC
	}
	if windowDays < 0 {
		windowDays = 0
	}

	year, month, day := now.In(loc).Date()

	todayStart := time.Date(year, month, day, 0, 0, 0, 0, loc)
	todayEnd := time.Date(year, month, day+1, 0, 0, 0, 0, loc)

	return Boundaries{
		TodayStart:      todayStart,
		TodayEnd:        todayEnd,
		TomorrowStart:   todayEnd,
		WeekFromNow:     time.Date(year, month, day+7, 0, 0, 0, 0, loc),
		CompletedCutoff: time.Date(year, month, day-windowDays, 0, 0, 0, 0, loc),
		Timezone:        loc.String(),
		WindowDays:      windowDays,
	}
}

// Validate checks the ordering invariants of the snapshot:
// TodayStart < TodayEnd <= TomorrowStart < WeekFromNow, the today span within
// the DST tolerance band, and CompletedCutoff < TodayStart whenever the
// window is non-zero (equal when it is zero).
func (b Boundaries) Validate() error {
	if !b.TodayStart.Before(b.TodayEnd) {
		return fmt.Errorf("%w: todayStart %v !< todayEnd %v", ErrBoundaryOrder, b.TodayStart, b.TodayEnd)
	}
	if b.TomorrowStart.Before(b.TodayEnd) {
		return fmt.Errorf("%w: tomorrowStart %v < todayEnd %v", ErrBoundaryOrder, b.TomorrowStart, b.TodayEnd)
	}
	if !b.TomorrowStart.Before(b.WeekFromNow) {
		return fmt.Errorf("%w: tomorrowStart %v !< weekFromNow %v", ErrBoundaryOrder, b.TomorrowStart, b.WeekFromNow)
	}

	span := b.TodayEnd.Sub(b.TodayStart)
	if span < minDaySpan || span > maxDaySpan {
		return fmt.Errorf("%w: %v", ErrBoundarySpan, span)
	}

	if b.WindowDays > 0 {
		if !b.CompletedCutoff.Before(b.TodayStart) {
			return fmt.Errorf("%w: completedCutoff %v !< todayStart %v", ErrBoundaryOrder, b.CompletedCutoff, b.TodayStart)
		}
	} else if !b.CompletedCutoff.Equal(b.TodayStart) {
		return fmt.Errorf("%w: zero-window cutoff %v != todayStart %v", ErrBoundaryOrder, b.CompletedCutoff, b.TodayStart)
	}

	return nil
}

// Contains reports whether t falls inside the user's current logical day,
// i.e. t in [TodayStart, TodayEnd).
func (b Boundaries) Contains(t time.Time) bool {
	return !t.Before(b.TodayStart) && t.Before(b.TodayEnd)
}

// NextMidnight returns the first local midnight in loc strictly after now,
// as an absolute instant. Across a spring-forward transition that removes
// midnight itself, the normalized instant time.Date produces is used.
func NextMidnight(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	year, month, day := now.In(loc).Date()
	next := time.Date(year, month, day+1, 0, 0, 0, 0, loc)
	for !next.After(now) {
		day++
		next = time.Date(year, month, day+1, 0, 0, 0, 0, loc)
	}
	return next
}

// InMidnightWindow reports whether now, observed in loc, falls within slack
// of local midnight on either side. Used as a diagnostic check that a rollover
// fired at a sensible moment.
func InMidnightWindow(now time.Time, loc *time.Location, slack time.Duration) bool {
	if loc == nil {
		loc = time.UTC
	}
	if slack < 0 {
		slack = 0
	}

	year, month, day := now.In(loc).Date()
	lastMidnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if now.Sub(lastMidnight) <= slack {
		return true
	}
	return NextMidnight(now, loc).Sub(now) <= slack
}
