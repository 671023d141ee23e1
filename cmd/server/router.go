package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/daylist/daylist-api/internal/api"
	apiMiddleware "github.com/daylist/daylist-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(
		apiMiddleware.NewTraceMiddleware(app.logger),
	) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	taskViewHandler := api.NewTaskViewHandler(app.viewEngine, app.resolver, app.logger)
	preferenceHandler := api.NewPreferenceHandler(app.preferenceService)
	adminHandler := api.NewAdminHandler(
		app.scheduler,
		app.passwordVerifier,
		app.config.Auth.AdminPasswordHash,
		app.logger,
	)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	// Seeing an authenticated request proves the user exists, so it is
	// also the lazy path for arming their midnight timer.
	activityMiddleware := apiMiddleware.NewActivityMiddleware(app.scheduler, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Task view and preference endpoints (JWT protected)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(activityMiddleware.Track)

			r.Get("/tasks", taskViewHandler.ListTasks)
			r.Get("/tasks/counts", taskViewHandler.GetCounts)

			r.Get("/preferences", preferenceHandler.GetPreference)
			r.Put("/preferences", preferenceHandler.UpdatePreference)
		})

		// Operational endpoints (admin token, not user JWTs)
		r.Route("/admin/rollover", func(r chi.Router) {
			r.Get("/timers", adminHandler.ListTimers)
			r.Post("/refresh", adminHandler.ForceRefresh)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
