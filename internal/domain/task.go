package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusArchived  TaskStatus = "archived"
)

// TaskPriority represents the urgency assigned to a task
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Common validation errors for Task
var (
	ErrTaskIDEmpty         = errors.New("task ID cannot be empty")
	ErrTaskTenantIDEmpty   = errors.New("task tenant ID cannot be empty")
	ErrTaskUserIDEmpty     = errors.New("task user ID cannot be empty")
	ErrTaskTitleEmpty      = errors.New("task title cannot be empty")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrCompletedAtMissing  = errors.New("completed task must have a completion time")
)

// Task is a user's task as read by the view engine. Identity is scoped to
// (tenant, owner); persistence and mutation belong to an external collaborator
// and this core only consumes tasks through the store query interface.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	TenantID    uuid.UUID    `json:"tenant_id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueAt       *time.Time   `json:"due_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new active Task owned by (tenantID, userID).
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewTask(tenantID, userID uuid.UUID, title string, priority TaskPriority) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    userID,
		Title:     title,
		Status:    TaskStatusActive,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.TenantID == uuid.Nil {
		return ErrTaskTenantIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Status.Valid() {
		return ErrInvalidTaskStatus
	}

	if !t.Priority.Valid() {
		return ErrInvalidTaskPriority
	}

	if t.Status == TaskStatusCompleted && t.CompletedAt == nil {
		return ErrCompletedAtMissing
	}

	return nil
}

// IsActive reports whether the task is in the active state.
func (t *Task) IsActive() bool {
	return t.Status == TaskStatusActive
}

// IsCompleted reports whether the task is in the completed state.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusActive, TaskStatusCompleted, TaskStatusArchived:
		return true
	default:
		return false
	}
}

// Rank orders statuses for list views: active rows sort before completed
// ones, archived rows last. The postgres store encodes the same ranking in
// SQL, so in-memory and database orderings must never diverge.
func (s TaskStatus) Rank() int {
	switch s {
	case TaskStatusActive:
		return 0
	case TaskStatusCompleted:
		return 1
	case TaskStatusArchived:
		return 2
	default:
		return 3
	}
}

// CompareViewOrder orders two tasks for list views, returning a negative
// number when a sorts first. The ordering is: status rank ascending, due
// date ascending with undated tasks last, priority rank descending,
// creation time descending, then ID as a final tiebreak. The postgres
// store compiles the identical ordering to SQL.
func CompareViewOrder(a, b *Task) int {
	if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
		return ra - rb
	}

	switch {
	case a.DueAt == nil && b.DueAt != nil:
		return 1
	case a.DueAt != nil && b.DueAt == nil:
		return -1
	case a.DueAt != nil && b.DueAt != nil:
		if a.DueAt.Before(*b.DueAt) {
			return -1
		}
		if b.DueAt.Before(*a.DueAt) {
			return 1
		}
	}

	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return rb - ra
	}

	if a.CreatedAt.After(b.CreatedAt) {
		return -1
	}
	if b.CreatedAt.After(a.CreatedAt) {
		return 1
	}

	return strings.Compare(a.ID.String(), b.ID.String())
}

// Valid reports whether the priority is one of the known values.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	default:
		return false
	}
}

// Rank orders priorities from low (0) to urgent (3). List views sort by this
// rank descending so urgent tasks surface first within a due-date group.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityLow:
		return 0
	case TaskPriorityMedium:
		return 1
	case TaskPriorityHigh:
		return 2
	case TaskPriorityUrgent:
		return 3
	default:
		return -1
	}
}
