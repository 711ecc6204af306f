package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// FacilityReader serves the stored facility snapshots
type FacilityReader interface {
	GetByID(ctx context.Context, id string) (*entities.Facility, error)
	ListByDomain(ctx context.Context, domain entities.Domain) ([]*entities.Facility, error)
	Search(ctx context.Context, params providers.SearchParams) (*providers.SearchResult, error)
}

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	facilities FacilityReader
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(facilities FacilityReader) *FacilityHandler {
	return &FacilityHandler{
		facilities: facilities,
	}
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	facility, err := h.facilities.GetByID(r.Context(), facilityID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, facility)
}

// ListFacilities handles GET /api/facilities?domain=
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("domain")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "domain is required")
		return
	}
	domain, ok := entities.ParseDomain(raw)
	if !ok {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown domain: %s", raw))
		return
	}

	facilities, err := h.facilities.ListByDomain(r.Context(), domain)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"count":      len(facilities),
	})
}

// SearchFacilities handles GET /api/facilities/search
func (h *FacilityHandler) SearchFacilities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := providers.SearchParams{
		Query:        query.Get("q"),
		FacilityType: entities.FacilityType(query.Get("type")),
		State:        query.Get("state"),
		Limit:        defaultSearchLimit,
	}

	if raw := query.Get("domain"); raw != "" {
		domain, ok := entities.ParseDomain(raw)
		if !ok {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown domain: %s", raw))
			return
		}
		params.Domain = domain
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}
		params.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			respondWithError(w, http.StatusBadRequest, "invalid offset parameter")
			return
		}
		params.Offset = offset
	}

	result, err := h.facilities.Search(r.Context(), params)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
