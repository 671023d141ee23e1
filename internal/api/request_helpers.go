package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/daylist/daylist-api/internal/api/shared"
	"github.com/daylist/daylist-api/internal/domain"
)

// Query parameter names for the task view endpoints.
const (
	queryParamFilter     = "filter"
	queryParamVisibility = "include_completed"
	queryParamLimit      = "limit"
	queryParamOffset     = "offset"
)

// getIdentityFromContext extracts the authenticated (tenant, user) pair from
// the request context. Both IDs are placed in the context by the
// authentication middleware; every store query is scoped by the pair, so a
// request that carries only one of them is treated as unauthenticated.
//
// Returns:
//   - (tenantID, userID, true): both UUIDs if successfully extracted
//   - (uuid.Nil, uuid.Nil, false): zero UUIDs if either is missing or invalid
func getIdentityFromContext(r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, uuid.Nil, false
	}
	tenantID, ok := r.Context().Value(shared.TenantIDContextKey).(uuid.UUID)
	if !ok || tenantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// requireIdentity extracts the authenticated (tenant, user) pair and writes
// a 401 response if either is missing. Handlers call this first and return
// immediately on ok == false; the error response has already been sent.
func requireIdentity(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	tenantID, userID, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity not found or invalid")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// parseFilter reads the filter query parameter. An absent parameter means
// the all view; anything present must be a known filter name.
func parseFilter(r *http.Request) (domain.FilterName, error) {
	raw := r.URL.Query().Get(queryParamFilter)
	if raw == "" {
		return domain.FilterAll, nil
	}
	return domain.ParseFilterName(raw)
}

// parseVisibilityDays reads the include_completed query parameter and maps
// it to a day count. This is the only place the wire value becomes an int;
// everything below the handler works with the day count alone.
//
// An absent parameter falls back to the provided default, which handlers
// resolve from the user's stored preference.
func parseVisibilityDays(r *http.Request, defaultDays int) (int, error) {
	raw := r.URL.Query().Get(queryParamVisibility)
	switch raw {
	case "":
		return defaultDays, nil
	case "none":
		return 0, nil
	case "1":
		return 1, nil
	case "7":
		return 7, nil
	case "30":
		return 30, nil
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidVisibility, raw)
	}
}

// parsePage reads the limit and offset query parameters. Absent parameters
// are left zero for Page.Normalize to default; values that are not integers
// fail with a pagination validation error.
func parsePage(r *http.Request) (domain.Page, error) {
	var page domain.Page
	if raw := r.URL.Query().Get(queryParamLimit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Page{}, fmt.Errorf("%w: limit %q", domain.ErrInvalidPagination, raw)
		}
		page.Limit = limit
	}
	if raw := r.URL.Query().Get(queryParamOffset); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			return domain.Page{}, fmt.Errorf("%w: offset %q", domain.ErrInvalidPagination, raw)
		}
		page.Offset = offset
	}
	return page, nil
}
