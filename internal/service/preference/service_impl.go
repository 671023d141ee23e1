package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/events"
	"github.com/daylist/daylist-api/internal/platform/logger"
	"github.com/daylist/daylist-api/internal/platform/viewcache"
	"github.com/daylist/daylist-api/internal/service/boundary"
	"github.com/daylist/daylist-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	prefs     store.PreferenceStore
	resolver  boundary.Resolver
	cache     *viewcache.Cache
	scheduler Rescheduler
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewService creates a new preference Service. The store and resolver are
// required; cache, scheduler, and emitter may be nil, which disables the
// corresponding side effect.
func NewService(
	prefs store.PreferenceStore,
	resolver boundary.Resolver,
	cache *viewcache.Cache,
	scheduler Rescheduler,
	emitter events.EventEmitter,
	log *slog.Logger,
) Service {
	// Validate inputs
	if prefs == nil {
		panic("prefs cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}

	// Use provided logger or create default
	if log == nil {
		log = slog.Default()
	}

	return &serviceImpl{
		prefs:     prefs,
		resolver:  resolver,
		cache:     cache,
		scheduler: scheduler,
		emitter:   emitter,
		logger:    log.With(slog.String("component", "preference_service")),
	}
}

// Get implements Service.Get.
func (s *serviceImpl) Get(ctx context.Context, userID uuid.UUID) (*domain.TimePreference, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", domain.ErrValidation)
	}

	pref, err := s.prefs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("no stored preference, returning defaults",
				slog.String("user_id", userID.String()))
			return domain.DefaultTimePreference(userID), nil
		}
		log.Error("failed to retrieve preference",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewGetError("failed to retrieve preference", err)
	}

	return pref, nil
}

// Update implements Service.Update.
func (s *serviceImpl) Update(
	ctx context.Context,
	userID uuid.UUID,
	timezone string,
	visibility domain.CompletedVisibility,
) (*domain.TimePreference, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", domain.ErrValidation)
	}

	// NewTimePreference rejects unknown zones and visibility values before
	// anything is written.
	pref, err := domain.NewTimePreference(userID, timezone, visibility)
	if err != nil {
		log.Warn("rejected preference update",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("timezone", timezone))
		return nil, err
	}

	if err := s.prefs.Upsert(ctx, pref); err != nil {
		log.Error("failed to save preference",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewUpdateError("failed to save preference", err)
	}

	// The write has landed; stale boundaries and cached views must not
	// outlive it.
	s.resolver.Invalidate(userID)
	if s.cache != nil {
		s.cache.InvalidateUser(userID)
	}

	if s.scheduler != nil {
		if err := s.scheduler.Schedule(ctx, userID); err != nil {
			// The previous timer stays armed and re-reads the zone when it
			// fires, so the views stay correct either way.
			log.Warn("failed to reschedule midnight timer",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
	}

	s.notifyChange(ctx, pref)

	log.Info("updated time preference",
		slog.String("user_id", userID.String()),
		slog.String("timezone", pref.Timezone),
		slog.String("visibility", string(pref.CompletedVisibility)))

	return pref, nil
}

// notifyChange emits a preference_change event. Delivery is best-effort;
// view correctness never depends on it.
func (s *serviceImpl) notifyChange(ctx context.Context, pref *domain.TimePreference) {
	if s.emitter == nil {
		return
	}

	event, err := events.NewRefreshEvent(events.EventTypePreferenceChange, pref.UserID, events.PreferencePayload{
		Timezone:            pref.Timezone,
		CompletedVisibility: string(pref.CompletedVisibility),
	})
	if err != nil {
		s.logger.Warn("failed to build preference change event",
			slog.String("error", err.Error()),
			slog.String("user_id", pref.UserID.String()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Warn("failed to emit preference change event",
			slog.String("error", err.Error()),
			slog.String("user_id", pref.UserID.String()))
	}
}
