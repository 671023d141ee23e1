package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/daylist/daylist-api/internal/api/shared"
	"github.com/daylist/daylist-api/internal/platform/logger"
	"github.com/daylist/daylist-api/internal/rollover"
	"github.com/daylist/daylist-api/internal/service/auth"
)

// adminTokenHeader carries the shared admin token for operational endpoints.
const adminTokenHeader = "X-Admin-Token"

// rolloverControl is the slice of the rollover scheduler the admin
// endpoints need.
type rolloverControl interface {
	ActiveTimers() []rollover.TimerInfo
	ForceRefreshAll(ctx context.Context)
}

// AdminHandler handles operational endpoints for the rollover scheduler.
// These are diagnostics for on-call use, not part of the client API, and
// are guarded by a shared token rather than user JWTs.
type AdminHandler struct {
	scheduler    rolloverControl
	verifier     auth.PasswordVerifier
	passwordHash string
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler. An empty passwordHash
// disables the endpoints entirely; they respond 404 as if unrouted.
func NewAdminHandler(
	scheduler rolloverControl,
	verifier auth.PasswordVerifier,
	passwordHash string,
	logger *slog.Logger,
) *AdminHandler {
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if verifier == nil {
		panic("verifier cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		scheduler:    scheduler,
		verifier:     verifier,
		passwordHash: passwordHash,
		logger:       logger.With(slog.String("component", "admin_handler")),
	}
}

// authorize checks the admin token and writes the error response itself
// when the check fails. When no hash is configured the endpoints do not
// exist as far as callers can tell.
func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if h.passwordHash == "" {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return false
	}

	token := r.Header.Get(adminTokenHeader)
	if token == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Admin token required")
		return false
	}
	if err := h.verifier.Compare(h.passwordHash, token); err != nil {
		log.Warn("Rejected admin request with invalid token",
			slog.String("path", r.URL.Path))
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid admin token")
		return false
	}
	return true
}

// ListTimers handles GET /api/admin/rollover/timers requests. It reports
// every armed midnight timer so an operator can verify that a user's
// rollover is scheduled in the zone they expect.
func (h *AdminHandler) ListTimers(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	timers := h.scheduler.ActiveTimers()
	out := make([]RolloverTimerResponse, 0, len(timers))
	for _, t := range timers {
		out = append(out, RolloverTimerResponse{
			UserID:       t.UserID.String(),
			Timezone:     t.Timezone,
			ScheduledFor: t.ScheduledFor,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RolloverTimersResponse{
		Count:  len(out),
		Timers: out,
	})
}

// ForceRefresh handles POST /api/admin/rollover/refresh requests. It
// invalidates boundaries and cached views for every scheduled user without
// waiting for their midnights, which is the recovery lever after a
// timezone-data update or a suspected stale-view incident.
func (h *AdminHandler) ForceRefresh(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)

	// Count before refreshing; the refresh itself never fails.
	refreshed := len(h.scheduler.ActiveTimers())
	h.scheduler.ForceRefreshAll(r.Context())

	log.Info("Forced rollover refresh for all scheduled users",
		slog.Int("refreshed", refreshed))

	shared.RespondWithJSON(w, r, http.StatusOK, ForceRefreshResponse{Refreshed: refreshed})
}
