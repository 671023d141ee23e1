package boundary

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/domain/timewindow"
	"github.com/daylist/daylist-api/internal/platform/logger"
	"github.com/daylist/daylist-api/internal/store"
)

// DefaultMemoTTL bounds how long a resolved preference or boundary snapshot
// is reused before the store is consulted again. Kept short so external
// preference edits converge quickly even without an explicit Invalidate.
const DefaultMemoTTL = 5 * time.Second

// Verify interface compliance at compile time
var _ Resolver = (*resolverImpl)(nil)

// prefEntry memoizes one user's resolved zone and visibility window.
type prefEntry struct {
	loc       *time.Location
	window    int
	expiresAt time.Time
}

// boundaryEntry memoizes one computed snapshot together with the instant it
// was sampled at.
type boundaryEntry struct {
	boundaries timewindow.Boundaries
	sampledAt  time.Time
	expiresAt  time.Time
}

// boundaryKey identifies a memoized snapshot. Window days participate in the
// key because the completed cutoff differs per window.
type boundaryKey struct {
	userID     uuid.UUID
	windowDays int
}

// resolverImpl implements the Resolver interface.
type resolverImpl struct {
	prefs  store.PreferenceStore
	logger *slog.Logger
	ttl    time.Duration

	// now is the wall clock, replaceable in tests.
	now func() time.Time

	mu        sync.RWMutex
	prefMemo  map[uuid.UUID]prefEntry
	boundMemo map[boundaryKey]boundaryEntry
}

// NewResolver creates a new Resolver backed by the given preference store.
// A non-positive ttl selects DefaultMemoTTL.
func NewResolver(prefs store.PreferenceStore, ttl time.Duration, log *slog.Logger) Resolver {
	// Validate inputs
	if prefs == nil {
		panic("prefs cannot be nil")
	}

	// Use provided logger or create default
	if log == nil {
		log = slog.Default()
	}

	if ttl <= 0 {
		ttl = DefaultMemoTTL
	}

	return &resolverImpl{
		prefs:     prefs,
		logger:    log.With(slog.String("component", "boundary_resolver")),
		ttl:       ttl,
		now:       time.Now,
		prefMemo:  make(map[uuid.UUID]prefEntry),
		boundMemo: make(map[boundaryKey]boundaryEntry),
	}
}

// Timezone implements Resolver.Timezone.
func (r *resolverImpl) Timezone(ctx context.Context, userID uuid.UUID) (*time.Location, error) {
	entry := r.resolvePref(ctx, userID)
	return entry.loc, nil
}

// VisibilityWindow implements Resolver.VisibilityWindow.
func (r *resolverImpl) VisibilityWindow(ctx context.Context, userID uuid.UUID) (int, error) {
	entry := r.resolvePref(ctx, userID)
	return entry.window, nil
}

// Boundaries implements Resolver.Boundaries.
func (r *resolverImpl) Boundaries(
	ctx context.Context,
	userID uuid.UUID,
	windowDays int,
) (timewindow.Boundaries, error) {
	if windowDays < 0 {
		windowDays = 0
	}

	now := r.now()
	key := boundaryKey{userID: userID, windowDays: windowDays}

	r.mu.RLock()
	entry, ok := r.boundMemo[key]
	r.mu.RUnlock()

	// A memo survives only while unexpired AND its day still contains now.
	// The second check keeps stale boundaries from outliving midnight.
	if ok && now.Before(entry.expiresAt) && entry.boundaries.Contains(now) {
		return entry.boundaries, nil
	}

	pref := r.resolvePref(ctx, userID)
	b := timewindow.Compute(now, pref.loc, windowDays)

	if err := b.Validate(); err != nil {
		log := logger.FromContextOrDefault(ctx, r.logger)
		log.Error("computed boundaries failed validation",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("timezone", b.Timezone))
	}

	r.mu.Lock()
	r.boundMemo[key] = boundaryEntry{
		boundaries: b,
		sampledAt:  now,
		expiresAt:  now.Add(r.ttl),
	}
	r.mu.Unlock()

	return b, nil
}

// Invalidate implements Resolver.Invalidate.
func (r *resolverImpl) Invalidate(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.prefMemo, userID)
	for key := range r.boundMemo {
		if key.userID == userID {
			delete(r.boundMemo, key)
		}
	}
}

// InvalidateAll implements Resolver.InvalidateAll.
func (r *resolverImpl) InvalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefMemo = make(map[uuid.UUID]prefEntry)
	r.boundMemo = make(map[boundaryKey]boundaryEntry)
}

// resolvePref returns the user's resolved zone and visibility window,
// consulting the memo first and degrading to defaults on any failure.
func (r *resolverImpl) resolvePref(ctx context.Context, userID uuid.UUID) prefEntry {
	now := r.now()

	r.mu.RLock()
	entry, ok := r.prefMemo[userID]
	r.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry
	}

	log := logger.FromContextOrDefault(ctx, r.logger)

	pref, err := r.prefs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("no stored preference, using defaults",
				slog.String("user_id", userID.String()))
		} else {
			log.Warn("preference lookup failed, using defaults",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
		pref = domain.DefaultTimePreference(userID)
	}

	loc, err := time.LoadLocation(pref.Timezone)
	if err != nil {
		log.Warn("unresolvable timezone, falling back to UTC",
			slog.String("timezone", pref.Timezone),
			slog.String("user_id", userID.String()))
		loc = time.UTC
	}

	entry = prefEntry{
		loc:       loc,
		window:    pref.CompletedVisibility.Days(),
		expiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.prefMemo[userID] = entry
	r.mu.Unlock()

	return entry
}
