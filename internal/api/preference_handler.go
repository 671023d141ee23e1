package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/daylist/daylist-api/internal/api/shared"
	"github.com/daylist/daylist-api/internal/domain"
	"github.com/daylist/daylist-api/internal/service/preference"
)

// PreferenceHandler handles time preference HTTP requests.
type PreferenceHandler struct {
	service   preference.Service
	validator *validator.Validate
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(service preference.Service) *PreferenceHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	return &PreferenceHandler{
		service:   service,
		validator: validator.New(),
	}
}

// GetPreference handles GET /api/preferences requests. A user who has never
// saved a preference receives the defaults rather than a 404.
func (h *PreferenceHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	pref, err := h.service.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get preference")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, preferenceToDTOResponse(pref))
}

// UpdatePreference handles PUT /api/preferences requests. A successful
// update moves the user's midnight, so the service invalidates boundary
// memos and cached views and re-arms the rollover timer before returning.
func (h *PreferenceHandler) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req UpdatePreferenceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	visibility, err := domain.ParseCompletedVisibility(req.CompletedVisibility)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to parse visibility")
		return
	}

	pref, err := h.service.Update(r.Context(), userID, req.Timezone, visibility)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update preference")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, preferenceToDTOResponse(pref))
}

// preferenceToDTOResponse converts a domain.TimePreference to a
// PreferenceResponse.
func preferenceToDTOResponse(pref *domain.TimePreference) PreferenceResponse {
	return PreferenceResponse{
		UserID:              pref.UserID.String(),
		Timezone:            pref.Timezone,
		CompletedVisibility: string(pref.CompletedVisibility),
		UpdatedAt:           pref.UpdatedAt,
	}
}
