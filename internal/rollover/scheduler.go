// Package rollover keeps each active user's filtered views aligned with
// their local calendar. It owns one cancelable timer per user, armed for
// that user's next local midnight; when a timer fires the user's boundary
// memo and cached view results are invalidated synchronously, a refresh
// event is emitted best-effort, and the timer re-arms for the following
// midnight.
//
// The scheduler is an explicitly owned instance with start and shutdown in
// the application lifecycle. There is no package-level state.
package rollover

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/config"
	"github.com/daylist/daylist-api/internal/domain/timewindow"
	"github.com/daylist/daylist-api/internal/events"
	"github.com/daylist/daylist-api/internal/platform/viewcache"
	"github.com/daylist/daylist-api/internal/service/boundary"
)

// Defaults applied when the rollover config leaves a knob unset.
const (
	defaultRefreshTimeout = 30 * time.Second
	defaultMidnightSlack  = 5 * time.Minute
)

// timerHandle abstracts *time.Timer so tests can arm and fire timers
// without waiting for wall-clock midnights.
type timerHandle interface {
	Stop() bool
}

// TimerInfo is a diagnostic snapshot of one armed timer.
type TimerInfo struct {
	UserID       uuid.UUID `json:"user_id"`
	Timezone     string    `json:"timezone"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// userTimer is the scheduler's book-keeping for one user. The generation
// stamp ties a fire callback to the arming that created it: a callback
// whose generation no longer matches the map entry belongs to a timer that
// was cleared or replaced after the callback was already in flight, and
// must do nothing.
type userTimer struct {
	timezone     string
	scheduledFor time.Time
	generation   uint64
	timer        timerHandle
}

// Scheduler maintains the per-user midnight timers.
type Scheduler struct {
	resolver boundary.Resolver
	cache    *viewcache.Cache
	emitter  events.EventEmitter
	logger   *slog.Logger

	refreshTimeout time.Duration
	midnightSlack  time.Duration

	// now and afterFunc are the wall clock and timer factory, replaceable
	// in tests.
	now       func() time.Time
	afterFunc func(d time.Duration, fn func()) timerHandle

	mu         sync.Mutex
	timers     map[uuid.UUID]*userTimer
	generation uint64
}

// NewScheduler creates a Scheduler. The resolver is required; cache and
// emitter may be nil, which skips cache invalidation and event emission
// respectively.
func NewScheduler(
	resolver boundary.Resolver,
	cache *viewcache.Cache,
	emitter events.EventEmitter,
	cfg config.RolloverConfig,
	log *slog.Logger,
) *Scheduler {
	// Validate inputs
	if resolver == nil {
		panic("resolver cannot be nil")
	}

	// Use provided logger or create default
	if log == nil {
		log = slog.Default()
	}

	refreshTimeout := time.Duration(cfg.RefreshTimeoutSeconds) * time.Second
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}
	midnightSlack := time.Duration(cfg.MidnightSlackMinutes) * time.Minute
	if midnightSlack <= 0 {
		midnightSlack = defaultMidnightSlack
	}

	return &Scheduler{
		resolver:       resolver,
		cache:          cache,
		emitter:        emitter,
		logger:         log.With(slog.String("component", "rollover_scheduler")),
		refreshTimeout: refreshTimeout,
		midnightSlack:  midnightSlack,
		now:            time.Now,
		afterFunc: func(d time.Duration, fn func()) timerHandle {
			return time.AfterFunc(d, fn)
		},
		timers: make(map[uuid.UUID]*userTimer),
	}
}

// Schedule arms a timer for the user's next local midnight, replacing any
// existing timer. Calling it repeatedly for the same user never duplicates
// timers.
func (s *Scheduler) Schedule(ctx context.Context, userID uuid.UUID) error {
	loc, err := s.resolver.Timezone(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now()
	fireAt := timewindow.NextMidnight(now, loc)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.installLocked(userID, loc.String(), now, fireAt)

	s.logger.Debug("scheduled midnight rollover",
		slog.String("user_id", userID.String()),
		slog.String("timezone", loc.String()),
		slog.Time("fire_at", fireAt))
	return nil
}

// Ensure arms a timer only if the user has none. Session-start hook used by
// the activity middleware; racing calls collapse to a single live timer.
func (s *Scheduler) Ensure(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	_, exists := s.timers[userID]
	s.mu.Unlock()

	if exists {
		return nil
	}
	return s.Schedule(ctx, userID)
}

// Clear stops and removes the user's timer. A missing timer is a no-op,
// not an error.
func (s *Scheduler) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.timers[userID]; ok {
		entry.timer.Stop()
		delete(s.timers, userID)
	}
}

// ClearAll stops and removes every timer.
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.timers {
		entry.timer.Stop()
	}
	s.timers = make(map[uuid.UUID]*userTimer)
}

// Shutdown releases every timer. Called once when the application exits.
func (s *Scheduler) Shutdown() {
	s.ClearAll()
	s.logger.Debug("rollover scheduler shut down")
}

// IsMidnightFor reports whether the current instant falls within the
// configured slack of the user's local midnight. Diagnostic only.
func (s *Scheduler) IsMidnightFor(ctx context.Context, userID uuid.UUID) bool {
	loc, err := s.resolver.Timezone(ctx, userID)
	if err != nil {
		return false
	}
	return timewindow.InMidnightWindow(s.now(), loc, s.midnightSlack)
}

// ActiveTimers returns a snapshot of every armed timer, ordered by user ID.
func (s *Scheduler) ActiveTimers() []TimerInfo {
	s.mu.Lock()
	infos := make([]TimerInfo, 0, len(s.timers))
	for userID, entry := range s.timers {
		infos = append(infos, TimerInfo{
			UserID:       userID,
			Timezone:     entry.timezone,
			ScheduledFor: entry.scheduledFor,
		})
	}
	s.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UserID.String() < infos[j].UserID.String()
	})
	return infos
}

// ForceRefreshAll invalidates boundaries and cached views for every
// scheduled user and notifies each best-effort. It never fails; with no
// timers armed it does nothing.
func (s *Scheduler) ForceRefreshAll(ctx context.Context) {
	s.mu.Lock()
	userIDs := make([]uuid.UUID, 0, len(s.timers))
	for userID := range s.timers {
		userIDs = append(userIDs, userID)
	}
	s.mu.Unlock()

	for _, userID := range userIDs {
		s.resolver.Invalidate(userID)
		if s.cache != nil {
			s.cache.InvalidateUser(userID)
		}
		s.notify(ctx, events.EventTypeForceRefresh, userID, nil)
	}

	s.logger.Info("forced refresh for all scheduled users",
		slog.Int("users", len(userIDs)))
}

// installLocked stops any existing timer for the user and arms a fresh one.
// Callers must hold s.mu.
func (s *Scheduler) installLocked(userID uuid.UUID, timezone string, now, fireAt time.Time) {
	if existing, ok := s.timers[userID]; ok {
		existing.timer.Stop()
	}

	s.generation++
	gen := s.generation

	entry := &userTimer{
		timezone:     timezone,
		scheduledFor: fireAt,
		generation:   gen,
	}
	entry.timer = s.afterFunc(fireAt.Sub(now), func() {
		s.fire(userID, gen)
	})
	s.timers[userID] = entry
}

// fire handles one midnight for one user. The generation check makes a
// callback from a cleared or replaced timer a no-op even if it was already
// in flight when the timer was stopped.
func (s *Scheduler) fire(userID uuid.UUID, gen uint64) {
	s.mu.Lock()
	entry, ok := s.timers[userID]
	if !ok || entry.generation != gen {
		s.mu.Unlock()
		return
	}
	timezone := entry.timezone
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.refreshTimeout)
	defer cancel()

	firedAt := s.now()
	s.logger.Info("midnight rollover fired",
		slog.String("user_id", userID.String()),
		slog.String("timezone", timezone))

	// Stale boundaries and cached views must be gone before anyone reacts
	// to the notification, so invalidation is synchronous.
	s.resolver.Invalidate(userID)
	if s.cache != nil {
		s.cache.InvalidateUser(userID)
	}

	loc, err := s.resolver.Timezone(ctx, userID)
	if err != nil || loc == nil {
		loc = time.UTC
	}

	s.notify(ctx, events.EventTypeDayRollover, userID, events.RolloverPayload{
		Timezone:  loc.String(),
		LocalDate: firedAt.In(loc).Format("2006-01-02"),
		FiredAt:   firedAt,
	})

	// Re-arm for the following midnight under the same generation
	// discipline; a Clear that raced the fire wins here.
	now := s.now()
	next := timewindow.NextMidnight(now, loc)

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok = s.timers[userID]
	if !ok || entry.generation != gen {
		return
	}
	s.installLocked(userID, loc.String(), now, next)
}

// notify emits a refresh event, logging and swallowing any failure. A user
// who misses a push still converges on the next read; view correctness
// never depends on delivery.
func (s *Scheduler) notify(ctx context.Context, eventType string, userID uuid.UUID, payload interface{}) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewRefreshEvent(eventType, userID, payload)
	if err != nil {
		s.logger.Warn("failed to build refresh event",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("event_type", eventType))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("refresh notification failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("event_type", eventType))
	}
}
