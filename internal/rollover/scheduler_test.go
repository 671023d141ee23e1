package rollover

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daylist/daylist-api/internal/config"
	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/domain/timewindow"
	"github.com/daylist/daylist-api/internal/events"
	"github.com/daylist/daylist-api/internal/mocks"
	"github.com/daylist/daylist-api/internal/platform/viewcache"
)

// fakeTimer records arming and stopping; trigger runs the callback
// synchronously, simulating a fire even after Stop to exercise the
// in-flight-callback races.
type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	delay   time.Duration
	stopped bool
}

func (f *fakeTimer) Stop() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return false
	}
	f.stopped = true
	return true
}

func (f *fakeTimer) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func (f *fakeTimer) trigger() { f.fn() }

// timerFactory collects every timer the scheduler arms.
type timerFactory struct {
	mu    sync.Mutex
	armed []*fakeTimer
}

func (tf *timerFactory) afterFunc(d time.Duration, fn func()) timerHandle {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	ft := &fakeTimer{fn: fn, delay: d}
	tf.armed = append(tf.armed, ft)
	return ft
}

func (tf *timerFactory) count() int {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return len(tf.armed)
}

func (tf *timerFactory) last() *fakeTimer {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.armed[len(tf.armed)-1]
}

// fakeResolver serves fixed zones and records invalidations.
type fakeResolver struct {
	mu          sync.Mutex
	zones       map[uuid.UUID]*time.Location
	invalidated map[uuid.UUID]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		zones:       make(map[uuid.UUID]*time.Location),
		invalidated: make(map[uuid.UUID]int),
	}
}

func (r *fakeResolver) Timezone(ctx context.Context, userID uuid.UUID) (*time.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.zones[userID]; ok {
		return loc, nil
	}
	return time.UTC, nil
}

func (r *fakeResolver) VisibilityWindow(ctx context.Context, userID uuid.UUID) (int, error) {
	return 0, nil
}

func (r *fakeResolver) Boundaries(ctx context.Context, userID uuid.UUID, windowDays int) (timewindow.Boundaries, error) {
	return timewindow.Boundaries{}, nil
}

func (r *fakeResolver) Invalidate(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated[userID]++
}

func (r *fakeResolver) InvalidateAll() {}

func (r *fakeResolver) invalidations(userID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invalidated[userID]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

type schedulerFixture struct {
	scheduler *Scheduler
	resolver  *fakeResolver
	cache     *viewcache.Cache
	emitter   *mocks.MockEventEmitter
	timers    *timerFactory
	clock     *time.Time
}

func newFixture(start time.Time) *schedulerFixture {
	resolver := newFakeResolver()
	cache := viewcache.New(64, time.Minute, testLogger())
	emitter := &mocks.MockEventEmitter{}
	tf := &timerFactory{}

	s := NewScheduler(resolver, cache, emitter,
		config.RolloverConfig{RefreshTimeoutSeconds: 5, MidnightSlackMinutes: 5},
		testLogger())

	clock := start
	s.now = func() time.Time { return clock }
	s.afterFunc = tf.afterFunc

	return &schedulerFixture{
		scheduler: s,
		resolver:  resolver,
		cache:     cache,
		emitter:   emitter,
		timers:    tf,
		clock:     &clock,
	}
}

func TestSchedule_ArmsTimerAtNextLocalMidnight(t *testing.T) {
	t.Parallel()

	// 10:00 UTC is 18:00 in Singapore; next local midnight is 16:00 UTC.
	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()
	fx.resolver.zones[userID] = mustLoc(t, "Asia/Singapore")

	require.NoError(t, fx.scheduler.Schedule(context.Background(), userID))

	infos := fx.scheduler.ActiveTimers()
	require.Len(t, infos, 1)
	assert.Equal(t, userID, infos[0].UserID)
	assert.Equal(t, "Asia/Singapore", infos[0].Timezone)
	assert.True(t, infos[0].ScheduledFor.Equal(time.Date(2024, 1, 16, 16, 0, 0, 0, time.UTC)),
		"scheduled for %v", infos[0].ScheduledFor)
	assert.Equal(t, 6*time.Hour, fx.timers.last().delay)
}

func TestSchedule_DaylightSavingShortDay(t *testing.T) {
	t.Parallel()

	// 01:00 EST on the spring-forward day; the next midnight is only 22
	// hours away because the day loses an hour.
	fx := newFixture(time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC))
	userID := uuid.New()
	fx.resolver.zones[userID] = mustLoc(t, "America/New_York")

	require.NoError(t, fx.scheduler.Schedule(context.Background(), userID))

	assert.Equal(t, 22*time.Hour, fx.timers.last().delay)
	info := fx.scheduler.ActiveTimers()[0]
	assert.True(t, info.ScheduledFor.Equal(time.Date(2024, 3, 11, 4, 0, 0, 0, time.UTC)))
}

func TestSchedule_ReplacesExistingTimer(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()
	fx.resolver.zones[userID] = mustLoc(t, "Asia/Singapore")

	require.NoError(t, fx.scheduler.Schedule(context.Background(), userID))
	first := fx.scheduler.ActiveTimers()[0].ScheduledFor

	*fx.clock = fx.clock.Add(2 * time.Second)
	require.NoError(t, fx.scheduler.Schedule(context.Background(), userID))

	infos := fx.scheduler.ActiveTimers()
	require.Len(t, infos, 1, "rescheduling must replace, never duplicate")
	assert.True(t, infos[0].ScheduledFor.Equal(first),
		"both arms target the same midnight")
	assert.Equal(t, 2, fx.timers.count())
	assert.True(t, fx.timers.armed[0].wasStopped(), "the replaced timer must be stopped")
}

func TestEnsure_SchedulesOnlyWhenAbsent(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()

	require.NoError(t, fx.scheduler.Ensure(context.Background(), userID))
	require.NoError(t, fx.scheduler.Ensure(context.Background(), userID))
	assert.Equal(t, 1, fx.timers.count(), "second Ensure must be a no-op")

	fx.scheduler.Clear(userID)
	require.NoError(t, fx.scheduler.Ensure(context.Background(), userID))
	assert.Equal(t, 2, fx.timers.count(), "Ensure after Clear arms a new timer")
}

func TestClear_MissingTimerIsNoop(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	fx.scheduler.Clear(uuid.New())
	assert.Empty(t, fx.scheduler.ActiveTimers())
}

func TestClearAll_RemovesEveryTimer(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	for i := 0; i < 5; i++ {
		require.NoError(t, fx.scheduler.Schedule(context.Background(), uuid.New()))
	}
	require.Len(t, fx.scheduler.ActiveTimers(), 5)

	fx.scheduler.ClearAll()

	assert.Empty(t, fx.scheduler.ActiveTimers())
	for i, ft := range fx.timers.armed {
		assert.True(t, ft.wasStopped(), "timer %d must be stopped", i)
	}
}

func TestFire_InvalidatesNotifiesAndReschedules(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	tenantID := uuid.New()
	userID := uuid.New()
	bystander := uuid.New()
	fx.resolver.zones[userID] = mustLoc(t, "Asia/Singapore")

	fx.cache.SetCounts(tenantID, userID, 0, domain.FilterCounts{All: 3})
	fx.cache.SetCounts(tenantID, bystander, 0, domain.FilterCounts{All: 8})

	require.NoError(t, fx.scheduler.Schedule(context.Background(), userID))
	armed := fx.timers.last()

	// Midnight arrives.
	*fx.clock = time.Date(2024, 1, 16, 16, 0, 0, 0, time.UTC)
	armed.trigger()

	assert.Equal(t, 1, fx.resolver.invalidations(userID),
		"boundary memo must be invalidated synchronously")

	_, ok := fx.cache.GetCounts(tenantID, userID, 0)
	assert.False(t, ok, "cached views must be invalidated synchronously")
	_, ok = fx.cache.GetCounts(tenantID, bystander, 0)
	assert.True(t, ok, "other users' cache entries must survive")

	emitted := fx.emitter.EmittedOfType(events.EventTypeDayRollover)
	require.Len(t, emitted, 1)
	assert.Equal(t, userID, emitted[0].UserID)

	var payload events.RolloverPayload
	require.NoError(t, emitted[0].UnmarshalPayload(&payload))
	assert.Equal(t, "Asia/Singapore", payload.Timezone)
	assert.Equal(t, "2024-01-17", payload.LocalDate, "the fire announces the new local date")
	assert.True(t, payload.FiredAt.Equal(*fx.clock))

	// The timer re-armed itself for the following midnight.
	infos := fx.scheduler.ActiveTimers()
	require.Len(t, infos, 1)
	assert.True(t, infos[0].ScheduledFor.Equal(time.Date(2024, 1, 17, 16, 0, 0, 0, time.UTC)),
		"rescheduled for %v", infos[0].ScheduledFor)
	assert.Equal(t, 2, fx.timers.count())
}

func TestFire_AfterClearIsIgnored(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()

	require.NoError(t, fx.scheduler.Schedule(context.Background(), userID))
	armed := fx.timers.last()

	fx.scheduler.Clear(userID)
	armed.trigger() // the callback was already in flight when Stop ran

	assert.Zero(t, fx.resolver.invalidations(userID))
	assert.Empty(t, fx.emitter.Emitted())
	assert.Empty(t, fx.scheduler.ActiveTimers(), "a cleared user must not be rescheduled")
	assert.Equal(t, 1, fx.timers.count())
}

func TestFire_StaleGenerationIsIgnored(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()

	require.NoError(t, fx.scheduler.Schedule(context.Background(), userID))
	stale := fx.timers.last()

	require.NoError(t, fx.scheduler.Schedule(context.Background(), userID))
	current := fx.timers.last()

	stale.trigger()
	assert.Zero(t, fx.resolver.invalidations(userID), "replaced timer's fire must be ignored")
	assert.Empty(t, fx.emitter.Emitted())

	*fx.clock = time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC)
	current.trigger()
	assert.Equal(t, 1, fx.resolver.invalidations(userID))
	require.Len(t, fx.emitter.Emitted(), 1)

	// A duplicate fire of the same timer is idempotent: the reschedule
	// already bumped the generation.
	current.trigger()
	assert.Equal(t, 1, fx.resolver.invalidations(userID))
	assert.Len(t, fx.emitter.Emitted(), 1)
}

func TestIsMidnightFor(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	userID := uuid.New()
	fx.resolver.zones[userID] = mustLoc(t, "Asia/Singapore")

	assert.False(t, fx.scheduler.IsMidnightFor(context.Background(), userID),
		"18:00 local is not midnight")

	*fx.clock = time.Date(2024, 1, 16, 16, 0, 2, 0, time.UTC)
	assert.True(t, fx.scheduler.IsMidnightFor(context.Background(), userID),
		"just after local midnight")

	*fx.clock = time.Date(2024, 1, 16, 15, 58, 0, 0, time.UTC)
	assert.True(t, fx.scheduler.IsMidnightFor(context.Background(), userID),
		"two minutes before local midnight, inside the slack")
}

func TestForceRefreshAll(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	tenantID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()

	require.NoError(t, fx.scheduler.Schedule(context.Background(), userA))
	require.NoError(t, fx.scheduler.Schedule(context.Background(), userB))
	fx.cache.SetCounts(tenantID, userA, 0, domain.FilterCounts{All: 1})
	fx.cache.SetCounts(tenantID, userB, 7, domain.FilterCounts{All: 2})

	fx.scheduler.ForceRefreshAll(context.Background())

	assert.Equal(t, 1, fx.resolver.invalidations(userA))
	assert.Equal(t, 1, fx.resolver.invalidations(userB))

	_, ok := fx.cache.GetCounts(tenantID, userA, 0)
	assert.False(t, ok)
	_, ok = fx.cache.GetCounts(tenantID, userB, 7)
	assert.False(t, ok)

	assert.Len(t, fx.emitter.EmittedOfType(events.EventTypeForceRefresh), 2)
	assert.Len(t, fx.scheduler.ActiveTimers(), 2, "force refresh leaves timers armed")
}

func TestForceRefreshAll_NoUsers(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	fx.scheduler.ForceRefreshAll(context.Background())
	assert.Empty(t, fx.emitter.Emitted())
}

func TestShutdown_ClearsTimers(t *testing.T) {
	t.Parallel()

	fx := newFixture(time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC))
	require.NoError(t, fx.scheduler.Schedule(context.Background(), uuid.New()))
	require.NoError(t, fx.scheduler.Schedule(context.Background(), uuid.New()))

	fx.scheduler.Shutdown()
	assert.Empty(t, fx.scheduler.ActiveTimers())
}
