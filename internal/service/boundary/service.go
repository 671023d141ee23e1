// Package boundary resolves per-user timezone settings into date boundary
// snapshots. Every filtered view and every midnight timer in the system is
// derived from the snapshots this package produces, so resolution follows a
// strict degrade-don't-fail policy: a missing preference, an unreadable
// store, or a timezone name the zone database no longer knows all resolve to
// usable defaults (UTC, zero visibility window) with a logged warning,
// never an error surfaced to the caller.
package boundary

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain/timewindow"
)

// Resolver turns a user ID into the timezone, visibility window, and date
// boundaries their views are built from.
type Resolver interface {
	// Timezone resolves the user's IANA zone to a loaded location.
	//
	// Resolution degrades rather than fails: a missing preference or a
	// malformed zone name yields time.UTC with a nil error. The error
	// return exists for strict callers and future resolution modes; the
	// current implementation never returns one.
	Timezone(ctx context.Context, userID uuid.UUID) (*time.Location, error)

	// VisibilityWindow resolves the user's completed-task visibility
	// window to a day count (0, 1, 7, or 30). A missing preference yields
	// 0, meaning completed tasks are hidden.
	VisibilityWindow(ctx context.Context, userID uuid.UUID) (int, error)

	// Boundaries returns the user's current date boundary snapshot for the
	// given visibility window. The wall clock is sampled exactly once per
	// computation, so the returned snapshot is internally consistent even
	// when the call straddles midnight.
	//
	// Snapshots are memoized per (user, window) with a short TTL. A memo
	// is reused only while its logical day still contains the current
	// instant, so a cached snapshot can never leak across a midnight
	// rollover regardless of TTL timing.
	Boundaries(ctx context.Context, userID uuid.UUID, windowDays int) (timewindow.Boundaries, error)

	// Invalidate drops the user's memoized timezone and boundary
	// snapshots. Must be called after any preference write and by the
	// rollover scheduler when a user's midnight fires.
	Invalidate(userID uuid.UUID)

	// InvalidateAll drops every memoized entry.
	InvalidateAll()
}
