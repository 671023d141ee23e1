package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daylist/daylist-api/internal/domain"
)

func queryRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, target, nil)
}

func TestParseFilter(t *testing.T) {
	t.Parallel()

	t.Run("absent_defaults_to_all", func(t *testing.T) {
		t.Parallel()
		filter, err := parseFilter(queryRequest(t, "/api/tasks"))
		require.NoError(t, err)
		assert.Equal(t, domain.FilterAll, filter)
	})

	t.Run("known_names_parse", func(t *testing.T) {
		t.Parallel()
		for _, name := range domain.Filters {
			filter, err := parseFilter(queryRequest(t, "/api/tasks?filter="+string(name)))
			require.NoError(t, err)
			assert.Equal(t, name, filter)
		}
	})

	t.Run("unknown_name_fails", func(t *testing.T) {
		t.Parallel()
		_, err := parseFilter(queryRequest(t, "/api/tasks?filter=someday"))
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	})
}

func TestParseVisibilityDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		target      string
		defaultDays int
		expected    int
		wantErr     bool
	}{
		{
			name:        "absent_uses_default",
			target:      "/api/tasks",
			defaultDays: 7,
			expected:    7,
		},
		{
			name:        "none_hides_completed",
			target:      "/api/tasks?include_completed=none",
			defaultDays: 30,
			expected:    0,
		},
		{
			name:     "one_day",
			target:   "/api/tasks?include_completed=1",
			expected: 1,
		},
		{
			name:     "seven_days",
			target:   "/api/tasks?include_completed=7",
			expected: 7,
		},
		{
			name:     "thirty_days",
			target:   "/api/tasks?include_completed=30",
			expected: 30,
		},
		{
			name:    "unsupported_day_count_fails",
			target:  "/api/tasks?include_completed=14",
			wantErr: true,
		},
		{
			name:    "non_numeric_value_fails",
			target:  "/api/tasks?include_completed=week",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			days, err := parseVisibilityDays(queryRequest(t, tc.target), tc.defaultDays)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidVisibility)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, days)
		})
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	t.Run("absent_parameters_leave_zero_page", func(t *testing.T) {
		t.Parallel()
		page, err := parsePage(queryRequest(t, "/api/tasks"))
		require.NoError(t, err)
		assert.Equal(t, domain.Page{}, page)
	})

	t.Run("explicit_window", func(t *testing.T) {
		t.Parallel()
		page, err := parsePage(queryRequest(t, "/api/tasks?limit=25&offset=100"))
		require.NoError(t, err)
		assert.Equal(t, domain.Page{Limit: 25, Offset: 100}, page)
	})

	t.Run("negative_values_parse_for_normalize_to_clamp", func(t *testing.T) {
		t.Parallel()
		page, err := parsePage(queryRequest(t, "/api/tasks?limit=-5&offset=-3"))
		require.NoError(t, err)
		assert.Equal(t, domain.Page{Limit: -5, Offset: -3}, page)

		normalized := page.Normalize()
		assert.Equal(t, domain.DefaultPageLimit, normalized.Limit)
		assert.Equal(t, 0, normalized.Offset)
	})

	t.Run("non_integer_limit_fails", func(t *testing.T) {
		t.Parallel()
		_, err := parsePage(queryRequest(t, "/api/tasks?limit=ten"))
		assert.ErrorIs(t, err, domain.ErrInvalidPagination)
	})

	t.Run("non_integer_offset_fails", func(t *testing.T) {
		t.Parallel()
		_, err := parsePage(queryRequest(t, "/api/tasks?offset=x"))
		assert.ErrorIs(t, err, domain.ErrInvalidPagination)
	})
}
