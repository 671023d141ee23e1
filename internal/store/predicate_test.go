package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/daylist/daylist-api/internal/domain"
)

func taskWith(status domain.TaskStatus, dueAt, completedAt *time.Time) *domain.Task {
	return &domain.Task{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Title:       "fixture",
		Status:      status,
		Priority:    domain.TaskPriorityMedium,
		DueAt:       dueAt,
		CompletedAt: completedAt,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrBool(b bool) *bool { return &b }

func TestClauseMatches(t *testing.T) {
	t.Parallel()

	todayStart := time.Date(2024, 1, 15, 16, 0, 0, 0, time.UTC)
	todayEnd := time.Date(2024, 1, 16, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		clause Clause
		task   *domain.Task
		want   bool
	}{
		{
			name:   "zero clause matches anything",
			clause: Clause{},
			task:   taskWith(domain.TaskStatusArchived, nil, nil),
			want:   true,
		},
		{
			name:   "status restriction hit",
			clause: Clause{Statuses: []domain.TaskStatus{domain.TaskStatusActive}},
			task:   taskWith(domain.TaskStatusActive, nil, nil),
			want:   true,
		},
		{
			name:   "status restriction miss",
			clause: Clause{Statuses: []domain.TaskStatus{domain.TaskStatusActive}},
			task:   taskWith(domain.TaskStatusCompleted, nil, ptrTime(todayStart)),
			want:   false,
		},
		{
			name: "due range includes lower bound",
			clause: Clause{
				DueAtOrAfter: &todayStart,
				DueBefore:    &todayEnd,
			},
			task: taskWith(domain.TaskStatusActive, ptrTime(todayStart), nil),
			want: true,
		},
		{
			name: "due range excludes upper bound",
			clause: Clause{
				DueAtOrAfter: &todayStart,
				DueBefore:    &todayEnd,
			},
			task: taskWith(domain.TaskStatusActive, ptrTime(todayEnd), nil),
			want: false,
		},
		{
			name: "due just inside the day",
			clause: Clause{
				DueAtOrAfter: &todayStart,
				DueBefore:    &todayEnd,
			},
			task: taskWith(domain.TaskStatusActive, ptrTime(todayStart.Add(30*time.Minute)), nil),
			want: true,
		},
		{
			name:   "undated task never matches a due bound",
			clause: Clause{DueBefore: &todayStart},
			task:   taskWith(domain.TaskStatusActive, nil, nil),
			want:   false,
		},
		{
			name:   "due is null required",
			clause: Clause{DueIsNull: ptrBool(true)},
			task:   taskWith(domain.TaskStatusActive, nil, nil),
			want:   true,
		},
		{
			name:   "due is null violated",
			clause: Clause{DueIsNull: ptrBool(true)},
			task:   taskWith(domain.TaskStatusActive, ptrTime(todayStart), nil),
			want:   false,
		},
		{
			name:   "completion cutoff includes boundary",
			clause: Clause{CompletedAtOrAfter: &todayStart},
			task:   taskWith(domain.TaskStatusCompleted, nil, ptrTime(todayStart)),
			want:   true,
		},
		{
			name:   "completion before cutoff",
			clause: Clause{CompletedAtOrAfter: &todayStart},
			task:   taskWith(domain.TaskStatusCompleted, nil, ptrTime(todayStart.Add(-time.Second))),
			want:   false,
		},
		{
			name:   "completion cutoff on a task never completed",
			clause: Clause{CompletedAtOrAfter: &todayStart},
			task:   taskWith(domain.TaskStatusActive, nil, nil),
			want:   false,
		},
		{
			name: "completion range excludes upper bound",
			clause: Clause{
				CompletedAtOrAfter: &todayStart,
				CompletedBefore:    &todayEnd,
			},
			task: taskWith(domain.TaskStatusCompleted, nil, ptrTime(todayEnd)),
			want: false,
		},
		{
			name: "completion inside the range",
			clause: Clause{
				CompletedAtOrAfter: &todayStart,
				CompletedBefore:    &todayEnd,
			},
			task: taskWith(domain.TaskStatusCompleted, nil, ptrTime(todayStart.Add(3*time.Hour))),
			want: true,
		},
		{
			name:   "completion upper bound on a task never completed",
			clause: Clause{CompletedBefore: &todayStart},
			task:   taskWith(domain.TaskStatusActive, nil, nil),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.clause.Matches(tt.task))
		})
	}
}

func TestTaskPredicateMatches(t *testing.T) {
	t.Parallel()

	todayStart := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	active := Clause{
		Statuses:  []domain.TaskStatus{domain.TaskStatusActive},
		DueBefore: &todayStart,
	}
	completed := Clause{
		Statuses:           []domain.TaskStatus{domain.TaskStatusCompleted},
		CompletedAtOrAfter: &todayStart,
	}

	pred := TaskPredicate{Clauses: []Clause{active, completed}}

	t.Run("matches via first clause", func(t *testing.T) {
		t.Parallel()
		task := taskWith(domain.TaskStatusActive, ptrTime(todayStart.Add(-time.Hour)), nil)
		assert.True(t, pred.Matches(task))
	})

	t.Run("matches via second clause", func(t *testing.T) {
		t.Parallel()
		task := taskWith(domain.TaskStatusCompleted, nil, ptrTime(todayStart.Add(time.Hour)))
		assert.True(t, pred.Matches(task))
	})

	t.Run("no clause matches", func(t *testing.T) {
		t.Parallel()
		task := taskWith(domain.TaskStatusArchived, nil, nil)
		assert.False(t, pred.Matches(task))
	})

	t.Run("empty predicate matches nothing", func(t *testing.T) {
		t.Parallel()
		task := taskWith(domain.TaskStatusActive, nil, nil)
		assert.False(t, TaskPredicate{}.Matches(task))
	})
}
