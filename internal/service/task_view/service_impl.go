package task_view

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/platform/logger"
	"github.com/daylist/daylist-api/internal/platform/viewcache"
	"github.com/daylist/daylist-api/internal/service/boundary"
	"github.com/daylist/daylist-api/internal/store"
)

// Verify interface compliance at compile time
var _ Engine = (*engineImpl)(nil)

// engineImpl implements the Engine interface.
type engineImpl struct {
	tasks    store.TaskStore
	resolver boundary.Resolver
	cache    *viewcache.Cache
	logger   *slog.Logger
}

// NewEngine creates a new view Engine. The cache may be nil, which disables
// result caching; store and resolver are required.
func NewEngine(
	tasks store.TaskStore,
	resolver boundary.Resolver,
	cache *viewcache.Cache,
	log *slog.Logger,
) Engine {
	// Validate inputs
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}

	// Use provided logger or create default
	if log == nil {
		log = slog.Default()
	}

	return &engineImpl{
		tasks:    tasks,
		resolver: resolver,
		cache:    cache,
		logger:   log.With(slog.String("component", "task_view_engine")),
	}
}

// ListTasks implements Engine.ListTasks.
func (e *engineImpl) ListTasks(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	filter domain.FilterName,
	visibilityDays int,
	page domain.Page,
) (*domain.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if err := validateScope(tenantID, userID); err != nil {
		return nil, err
	}
	if !filter.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFilter, filter)
	}
	if _, err := domain.VisibilityFromDays(visibilityDays); err != nil {
		return nil, err
	}
	page = page.Normalize()

	if e.cache != nil {
		if cached, ok := e.cache.GetList(tenantID, userID, filter, visibilityDays, page); ok {
			log.Debug("serving list from cache",
				slog.String("user_id", userID.String()),
				slog.String("filter", string(filter)))
			return cached, nil
		}
	}

	boundaries, err := e.resolver.Boundaries(ctx, userID, visibilityDays)
	if err != nil {
		return nil, NewListTasksError("failed to resolve boundaries", fmt.Errorf("%w: %v", ErrCompute, err))
	}

	pred := buildPredicate(filter, boundaries, visibilityDays)

	// List and total run against the identical predicate, concurrently.
	var (
		tasks []*domain.Task
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var qerr error
		tasks, qerr = e.tasks.Query(gctx, tenantID, userID, pred, page)
		if qerr != nil {
			return NewListTasksError("failed to query tasks", qerr)
		}
		return nil
	})
	g.Go(func() error {
		var cerr error
		total, cerr = e.tasks.Count(gctx, tenantID, userID, pred)
		if cerr != nil {
			return NewListTasksError("failed to count tasks", cerr)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("list query failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("filter", string(filter)))
		return nil, err
	}

	result := &domain.TaskPage{
		Tasks:      tasks,
		TotalCount: total,
		HasMore:    page.Offset+len(tasks) < total,
	}

	if e.cache != nil {
		e.cache.SetList(tenantID, userID, filter, visibilityDays, page, result)
	}

	log.Debug("listed filtered tasks",
		slog.String("user_id", userID.String()),
		slog.String("filter", string(filter)),
		slog.Int("page_size", len(tasks)),
		slog.Int("total", total))

	return result, nil
}

// Counts implements Engine.Counts.
func (e *engineImpl) Counts(
	ctx context.Context,
	tenantID, userID uuid.UUID,
	visibilityDays int,
) (*domain.FilterCounts, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	if err := validateScope(tenantID, userID); err != nil {
		return nil, err
	}
	if _, err := domain.VisibilityFromDays(visibilityDays); err != nil {
		return nil, err
	}

	if e.cache != nil {
		if cached, ok := e.cache.GetCounts(tenantID, userID, visibilityDays); ok {
			log.Debug("serving counts from cache", slog.String("user_id", userID.String()))
			return &cached, nil
		}
	}

	// One snapshot for every sub-count; a counts request must never
	// straddle two definitions of "today".
	boundaries, err := e.resolver.Boundaries(ctx, userID, visibilityDays)
	if err != nil {
		return nil, NewCountsError("failed to resolve boundaries", fmt.Errorf("%w: %v", ErrCompute, err))
	}

	var counts domain.FilterCounts
	targets := []struct {
		filter domain.FilterName
		dest   *int
	}{
		{domain.FilterAll, &counts.All},
		{domain.FilterToday, &counts.Today},
		{domain.FilterOverdue, &counts.Overdue},
		{domain.FilterUpcoming, &counts.Upcoming},
		{domain.FilterNoDueDate, &counts.NoDueDate},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, tgt := range targets {
		g.Go(func() error {
			n, cerr := e.tasks.Count(gctx, tenantID, userID, buildPredicate(tgt.filter, boundaries, visibilityDays))
			if cerr != nil {
				return NewCountsError(fmt.Sprintf("failed to count %s", tgt.filter), cerr)
			}
			*tgt.dest = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("counts query failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	// Focus is arithmetic, never a sixth query. The today and overdue
	// clause sets are disjoint, so the sum is exact.
	counts.Focus = counts.Today + counts.Overdue

	if e.cache != nil {
		e.cache.SetCounts(tenantID, userID, visibilityDays, counts)
	}

	log.Debug("computed filter counts",
		slog.String("user_id", userID.String()),
		slog.Int("all", counts.All),
		slog.Int("focus", counts.Focus))

	return &counts, nil
}

// validateScope rejects nil ownership IDs before any query runs. Scoping by
// both IDs is a hard invariant of every store call, not a convention.
func validateScope(tenantID, userID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant ID cannot be empty", domain.ErrValidation)
	}
	if userID == uuid.Nil {
		return fmt.Errorf("%w: user ID cannot be empty", domain.ErrValidation)
	}
	return nil
}
