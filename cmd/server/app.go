package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/daylist/daylist-api/internal/config"
	"github.com/daylist/daylist-api/internal/events"
	"github.com/daylist/daylist-api/internal/platform/postgres"
	"github.com/daylist/daylist-api/internal/platform/viewcache"
	"github.com/daylist/daylist-api/internal/rollover"
	"github.com/daylist/daylist-api/internal/service/auth"
	"github.com/daylist/daylist-api/internal/service/boundary"
	"github.com/daylist/daylist-api/internal/service/preference"
	"github.com/daylist/daylist-api/internal/service/task_view"
	"github.com/daylist/daylist-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	taskStore       store.TaskStore
	preferenceStore store.PreferenceStore

	// Service interfaces
	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	resolver          boundary.Resolver
	viewEngine        task_view.Engine
	preferenceService preference.Service

	// View cache and rollover scheduling
	viewCache *viewcache.Cache
	scheduler *rollover.Scheduler

	// Event system
	eventEmitter events.EventEmitter
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password verifier for the admin endpoints
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.preferenceStore = postgres.NewPostgresPreferenceStore(db, logger)

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Initialize the boundary resolver with its default memoization TTL
	app.resolver = boundary.NewResolver(app.preferenceStore, 0, logger)

	// Initialize the view result cache
	app.viewCache = viewcache.New(
		cfg.View.CacheSize,
		time.Duration(cfg.View.CacheTTLSeconds)*time.Second,
		logger,
	)

	// Initialize the view engine
	app.viewEngine = task_view.NewEngine(app.taskStore, app.resolver, app.viewCache, logger)

	// Initialize the rollover scheduler
	app.scheduler = rollover.NewScheduler(
		app.resolver,
		app.viewCache,
		app.eventEmitter,
		cfg.Rollover,
		logger,
	)

	// Initialize the preference service; preference writes re-arm the
	// user's midnight timer through the scheduler
	app.preferenceService = preference.NewService(
		app.preferenceStore,
		app.resolver,
		app.viewCache,
		app.scheduler,
		app.eventEmitter,
		logger,
	)

	// Arm a midnight timer for every user with a stored preference
	if err := app.bootstrapRollover(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap rollover timers: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// bootstrapRollover schedules midnight timers for all stored preferences.
// Users without a stored preference get their timer armed lazily on first
// authenticated request by the activity middleware.
func (app *application) bootstrapRollover(ctx context.Context) error {
	prefs, err := app.preferenceStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list preferences: %w", err)
	}

	scheduled := 0
	for _, pref := range prefs {
		if err := app.scheduler.Schedule(ctx, pref.UserID); err != nil {
			// One bad preference must not keep the rest of the fleet
			// from getting timers.
			app.logger.Warn("Failed to schedule rollover timer at startup",
				"user_id", pref.UserID,
				"error", err)
			continue
		}
		scheduled++
	}

	app.logger.Info("Rollover timers armed",
		"stored_preferences", len(prefs),
		"scheduled", scheduled)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop all midnight timers
	if app.scheduler != nil {
		app.scheduler.Shutdown()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
