package domain

import "fmt"

// FilterName identifies one of the task views derived from a user's date
// boundaries.
type FilterName string

// Known task views
const (
	FilterAll       FilterName = "all"
	FilterToday     FilterName = "today"
	FilterOverdue   FilterName = "overdue"
	FilterUpcoming  FilterName = "upcoming"
	FilterNoDueDate FilterName = "no-due-date"
	FilterFocus     FilterName = "focus"
)

// Filters lists every known view in a stable order, matching the fields of
// FilterCounts.
var Filters = []FilterName{
	FilterAll,
	FilterToday,
	FilterOverdue,
	FilterUpcoming,
	FilterNoDueDate,
	FilterFocus,
}

// Valid reports whether the filter is one of the known views.
func (f FilterName) Valid() bool {
	switch f {
	case FilterAll, FilterToday, FilterOverdue, FilterUpcoming, FilterNoDueDate, FilterFocus:
		return true
	default:
		return false
	}
}

// ParseFilterName converts a request string into a FilterName.
// Returns ErrInvalidFilter for anything outside the closed set.
func ParseFilterName(s string) (FilterName, error) {
	f := FilterName(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	return f, nil
}

// FilterCounts aggregates the per-view task counts for one (tenant, user)
// at one boundary snapshot. Invariant: Focus == Today + Overdue, always;
// the view engine guarantees this by construction rather than by issuing a
// separate focus query.
type FilterCounts struct {
	All       int `json:"all"`
	Today     int `json:"today"`
	Overdue   int `json:"overdue"`
	Upcoming  int `json:"upcoming"`
	NoDueDate int `json:"no_due_date"`
	Focus     int `json:"focus"`
}

// Get returns the count for the named filter.
func (c *FilterCounts) Get(f FilterName) int {
	switch f {
	case FilterAll:
		return c.All
	case FilterToday:
		return c.Today
	case FilterOverdue:
		return c.Overdue
	case FilterUpcoming:
		return c.Upcoming
	case FilterNoDueDate:
		return c.NoDueDate
	case FilterFocus:
		return c.Focus
	default:
		return 0
	}
}

// TaskPage is one page of a filtered view together with the filter's total
// count. TotalCount is computed from the same predicate as the page itself,
// so it always reconciles with the number of rows across all pages.
type TaskPage struct {
	Tasks      []*Task `json:"tasks"`
	TotalCount int     `json:"total_count"`
	HasMore    bool    `json:"has_more"`
}

// Pagination limits for list queries.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Page is the pagination window for a list query.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize applies defaults and caps: a non-positive limit becomes
// DefaultPageLimit, limits above MaxPageLimit are clamped, and a negative
// offset becomes zero.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
