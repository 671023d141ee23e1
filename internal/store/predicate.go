package store

import (
	"time"

	"github.com/daylist/daylist-api/internal/domain"
)

// Clause is one conjunctive condition set over task rows. Only non-nil
// (or non-empty) fields participate; a zero Clause matches every task.
// All time comparisons are against absolute instants that the caller has
// already derived from the user's date boundaries, so clauses carry no
// timezone knowledge of their own.
type Clause struct {
	// Statuses restricts matches to tasks in any of the listed states.
	// Empty means any status.
	Statuses []domain.TaskStatus

	// DueAtOrAfter matches tasks with a due date at or after the instant.
	// Tasks without a due date never match.
	DueAtOrAfter *time.Time

	// DueBefore matches tasks with a due date strictly before the instant.
	// Tasks without a due date never match.
	DueBefore *time.Time

	// DueIsNull, when set, requires the task's due date to be absent (true)
	// or present (false).
	DueIsNull *bool

	// CompletedAtOrAfter matches tasks completed at or after the instant.
	// Tasks without a completion time never match.
	CompletedAtOrAfter *time.Time

	// CompletedBefore matches tasks completed strictly before the instant.
	// Tasks without a completion time never match.
	CompletedBefore *time.Time
}

// Matches reports whether the task satisfies every condition in the clause.
// The postgres store compiles the same semantics to SQL; the two evaluations
// must never diverge.
func (c Clause) Matches(t *domain.Task) bool {
	if len(c.Statuses) > 0 {
		ok := false
		for _, s := range c.Statuses {
			if t.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if c.DueIsNull != nil {
		if *c.DueIsNull != (t.DueAt == nil) {
			return false
		}
	}

	if c.DueAtOrAfter != nil {
		if t.DueAt == nil || t.DueAt.Before(*c.DueAtOrAfter) {
			return false
		}
	}

	if c.DueBefore != nil {
		if t.DueAt == nil || !t.DueAt.Before(*c.DueBefore) {
			return false
		}
	}

	if c.CompletedAtOrAfter != nil {
		if t.CompletedAt == nil || t.CompletedAt.Before(*c.CompletedAtOrAfter) {
			return false
		}
	}

	if c.CompletedBefore != nil {
		if t.CompletedAt == nil || !t.CompletedAt.Before(*c.CompletedBefore) {
			return false
		}
	}

	return true
}

// TaskPredicate selects tasks for one filtered view: a task matches when any
// of its clauses matches. The view engine derives the clause lists from a
// boundary snapshot, which keeps filter semantics in one place and lets the
// focus view reuse the today and overdue clauses verbatim.
//
// Tenant and owner scoping is deliberately not expressed here; Query and
// Count take those IDs as separate arguments so no predicate can cross a
// tenant boundary.
type TaskPredicate struct {
	Clauses []Clause
}

// Matches reports whether any clause matches the task. An empty predicate
// matches nothing.
func (p TaskPredicate) Matches(t *domain.Task) bool {
	for _, c := range p.Clauses {
		if c.Matches(t) {
			return true
		}
	}
	return false
}
