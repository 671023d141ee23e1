package api

import (
	"log/slog"
	"net/http"

	"github.com/daylist/daylist-api/internal/api/shared"
	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/service/boundary"
	"github.com/daylist/daylist-api/internal/service/task_view"
)

// TaskViewHandler handles the read-only task view endpoints. Both endpoints
// accept the same identity and visibility inputs so a client fetching a list
// and its counts together sees one coherent snapshot.
type TaskViewHandler struct {
	engine   task_view.Engine
	resolver boundary.Resolver
	logger   *slog.Logger
}

// NewTaskViewHandler creates a new TaskViewHandler.
func NewTaskViewHandler(
	engine task_view.Engine,
	resolver boundary.Resolver,
	logger *slog.Logger,
) *TaskViewHandler {
	if engine == nil {
		panic("engine cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskViewHandler{
		engine:   engine,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "task_view_handler")),
	}
}

// ListTasks handles GET /api/tasks requests.
//
// Query parameters:
//   - filter: one of all, today, overdue, upcoming, no-due-date, focus;
//     absent means all
//   - include_completed: none, 1, 7, or 30; absent falls back to the
//     user's stored preference
//   - limit, offset: pagination window
func (h *TaskViewHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to parse filter")
		return
	}

	// The stored preference is the default; an explicit include_completed
	// parameter overrides it for this request only.
	defaultDays, err := h.resolver.VisibilityWindow(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to resolve visibility preference")
		return
	}
	visibilityDays, err := parseVisibilityDays(r, defaultDays)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to parse visibility")
		return
	}

	page, err := parsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to parse pagination")
		return
	}

	result, err := h.engine.ListTasks(r.Context(), tenantID, userID, filter, visibilityDays, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	// Echo the normalized window so clients see the limits that actually
	// applied, not the raw parameters they sent.
	page = page.Normalize()
	response := TaskListResponse{
		Filter:     string(filter),
		Tasks:      tasksToDTOResponse(result.Tasks),
		TotalCount: result.TotalCount,
		HasMore:    result.HasMore,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// GetCounts handles GET /api/tasks/counts requests.
//
// Query parameters:
//   - include_completed: none, 1, 7, or 30; absent falls back to the
//     user's stored preference
func (h *TaskViewHandler) GetCounts(w http.ResponseWriter, r *http.Request) {
	tenantID, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	defaultDays, err := h.resolver.VisibilityWindow(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to resolve visibility preference")
		return
	}
	visibilityDays, err := parseVisibilityDays(r, defaultDays)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to parse visibility")
		return
	}

	counts, err := h.engine.Counts(r.Context(), tenantID, userID, visibilityDays)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, counts)
}

// tasksToDTOResponse converts a slice of domain.Task to TaskResponse values.
// Always returns a non-nil slice so the JSON field is [] rather than null.
func tasksToDTOResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskResponse{
			ID:          t.ID.String(),
			UserID:      t.UserID.String(),
			Title:       t.Title,
			Status:      string(t.Status),
			Priority:    string(t.Priority),
			DueAt:       t.DueAt,
			CompletedAt: t.CompletedAt,
			Tags:        t.Tags,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return out
}
