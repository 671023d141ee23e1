package task_view

import (
	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/domain/timewindow"
	"github.com/daylist/daylist-api/internal/store"
)

// buildPredicate translates a filter name into its clause list against one
// boundary snapshot. Every caller, list or count, goes through here; there
// is deliberately no second encoding of these rules anywhere.
//
// Completed tasks join a view only while the visibility window is open
// (visibilityDays > 0), and they are classified by completion instant:
// completed today belongs to "today", completed earlier but inside the
// window belongs to "overdue". Archived tasks match no filter.
func buildPredicate(filter domain.FilterName, b timewindow.Boundaries, visibilityDays int) store.TaskPredicate {
	switch filter {
	case domain.FilterToday:
		return store.TaskPredicate{Clauses: todayClauses(b, visibilityDays)}
	case domain.FilterOverdue:
		return store.TaskPredicate{Clauses: overdueClauses(b, visibilityDays)}
	case domain.FilterUpcoming:
		return store.TaskPredicate{Clauses: upcomingClauses(b)}
	case domain.FilterNoDueDate:
		return store.TaskPredicate{Clauses: noDueDateClauses()}
	case domain.FilterFocus:
		// Focus is exactly today's clauses plus overdue's clauses. Reusing
		// the same constructors is what pins focus == today + overdue.
		clauses := todayClauses(b, visibilityDays)
		clauses = append(clauses, overdueClauses(b, visibilityDays)...)
		return store.TaskPredicate{Clauses: clauses}
	case domain.FilterAll:
		return store.TaskPredicate{Clauses: allClauses(b, visibilityDays)}
	default:
		// Unknown filters are rejected before predicate construction; an
		// empty predicate matches nothing, so even a missed validation
		// cannot leak rows.
		return store.TaskPredicate{}
	}
}

func todayClauses(b timewindow.Boundaries, visibilityDays int) []store.Clause {
	clauses := []store.Clause{{
		Statuses:     []domain.TaskStatus{domain.TaskStatusActive},
		DueAtOrAfter: &b.TodayStart,
		DueBefore:    &b.TodayEnd,
	}}
	if visibilityDays > 0 {
		clauses = append(clauses, store.Clause{
			Statuses:           []domain.TaskStatus{domain.TaskStatusCompleted},
			CompletedAtOrAfter: &b.TodayStart,
			CompletedBefore:    &b.TodayEnd,
		})
	}
	return clauses
}

func overdueClauses(b timewindow.Boundaries, visibilityDays int) []store.Clause {
	clauses := []store.Clause{{
		Statuses:  []domain.TaskStatus{domain.TaskStatusActive},
		DueBefore: &b.TodayStart,
	}}
	if visibilityDays > 0 {
		clauses = append(clauses, store.Clause{
			Statuses:           []domain.TaskStatus{domain.TaskStatusCompleted},
			CompletedAtOrAfter: &b.CompletedCutoff,
			CompletedBefore:    &b.TodayStart,
		})
	}
	return clauses
}

func upcomingClauses(b timewindow.Boundaries) []store.Clause {
	return []store.Clause{{
		Statuses:     []domain.TaskStatus{domain.TaskStatusActive},
		DueAtOrAfter: &b.TomorrowStart,
		DueBefore:    &b.WeekFromNow,
	}}
}

func noDueDateClauses() []store.Clause {
	noDue := true
	return []store.Clause{{
		Statuses:  []domain.TaskStatus{domain.TaskStatusActive},
		DueIsNull: &noDue,
	}}
}

func allClauses(b timewindow.Boundaries, visibilityDays int) []store.Clause {
	clauses := []store.Clause{{
		Statuses: []domain.TaskStatus{domain.TaskStatusActive},
	}}
	if visibilityDays > 0 {
		clauses = append(clauses, store.Clause{
			Statuses:           []domain.TaskStatus{domain.TaskStatusCompleted},
			CompletedAtOrAfter: &b.CompletedCutoff,
			CompletedBefore:    &b.TodayEnd,
		})
	}
	return clauses
}
