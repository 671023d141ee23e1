package api

import (
	"time"
)

// Common request/response structures

// TaskResponse is the wire representation of a single task.
type TaskResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`

	// DueAt is absent for tasks with no due date.
	DueAt *time.Time `json:"due_at,omitempty"`

	// CompletedAt is absent for tasks that were never completed.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskListResponse defines the response for the task list endpoint. It
// echoes the effective filter and pagination window so clients can tell
// which defaults were applied server-side.
type TaskListResponse struct {
	Filter     string         `json:"filter"`
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int            `json:"total_count"`
	HasMore    bool           `json:"has_more"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

// PreferenceResponse defines the response for the preference endpoints.
type PreferenceResponse struct {
	UserID              string    `json:"user_id"`
	Timezone            string    `json:"timezone"`
	CompletedVisibility string    `json:"completed_task_visibility"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// UpdatePreferenceRequest defines the payload for the preference update
// endpoint. The timezone is validated against the IANA database by the
// service layer; the struct tags only reject obviously malformed input.
type UpdatePreferenceRequest struct {
	Timezone            string `json:"timezone"                  validate:"required,min=1,max=64"`
	CompletedVisibility string `json:"completed_task_visibility" validate:"required,oneof=none 1day 7days 30days"`
}

// RolloverTimerResponse describes one armed midnight timer.
type RolloverTimerResponse struct {
	UserID       string    `json:"user_id"`
	Timezone     string    `json:"timezone"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// RolloverTimersResponse defines the response for the timer enumeration
// endpoint.
type RolloverTimersResponse struct {
	Count  int                     `json:"count"`
	Timers []RolloverTimerResponse `json:"timers"`
}

// ForceRefreshResponse defines the response for the forced rollover
// refresh endpoint.
type ForceRefreshResponse struct {
	// Refreshed is the number of scheduled users whose boundaries and
	// cached views were invalidated.
	Refreshed int `json:"refreshed"`
}
