package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

// IdempotencyKeyHeader lets a client retry a collection trigger safely
const IdempotencyKeyHeader = "Idempotency-Key"

// CollectionRunner runs collection batches
type CollectionRunner interface {
	CollectAll(ctx context.Context) (*entities.CollectionResult, error)
	Collect(ctx context.Context, domains ...entities.Domain) (*entities.CollectionResult, error)
}

// LatestResultReader returns the last finished run
type LatestResultReader interface {
	LatestResult(ctx context.Context) (*entities.CollectionResult, error)
}

// CollectorHandler triggers collection runs and reports their results
type CollectorHandler struct {
	runner         CollectionRunner
	latest         LatestResultReader
	cache          providers.CacheProvider
	idempotencyTTL time.Duration
}

// NewCollectorHandler creates a new collector handler. latest and cache are
// optional.
func NewCollectorHandler(runner CollectionRunner, latest LatestResultReader, cache providers.CacheProvider, idempotencyTTL time.Duration) *CollectorHandler {
	return &CollectorHandler{
		runner:         runner,
		latest:         latest,
		cache:          cache,
		idempotencyTTL: idempotencyTTL,
	}
}

// runResponse is a collection run without the facility list unless requested
type runResponse struct {
	RunID      string                   `json:"run_id"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Domains    []entities.DomainSummary `json:"domains"`
	Count      int                      `json:"count"`
	Facilities []*entities.Facility     `json:"facilities,omitempty"`
}

func newRunResponse(result *entities.CollectionResult, includeFacilities bool) runResponse {
	response := runResponse{
		RunID:      result.RunID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Domains:    result.Domains,
		Count:      len(result.Facilities),
	}
	if includeFacilities {
		response.Facilities = result.Facilities
		if response.Facilities == nil {
			response.Facilities = []*entities.Facility{}
		}
	}
	return response
}

func includeFacilities(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("include"), "facilities")
}

// CollectAll handles POST /api/collect
func (h *CollectorHandler) CollectAll(w http.ResponseWriter, r *http.Request) {
	if !h.claim(w, r) {
		return
	}

	// A run outlives a disconnected client so its snapshots still land
	result, err := h.runner.CollectAll(context.WithoutCancel(r.Context()))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	h.respondWithRun(w, r, result)
}

// CollectDomain handles POST /api/collect/{domain}
func (h *CollectorHandler) CollectDomain(w http.ResponseWriter, r *http.Request) {
	domain, ok := entities.ParseDomain(r.PathValue("domain"))
	if !ok {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("unknown domain: %s", r.PathValue("domain")))
		return
	}
	if !h.claim(w, r) {
		return
	}

	result, err := h.runner.Collect(context.WithoutCancel(r.Context()), domain)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	h.respondWithRun(w, r, result)
}

// Latest handles GET /api/collect/latest
func (h *CollectorHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if h.latest == nil {
		respondWithError(w, http.StatusNotFound, "no collection result cache configured")
		return
	}
	result, err := h.latest.LatestResult(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newRunResponse(result, includeFacilities(r)))
}

// A run where every domain failed produced nothing and is reported as an
// upstream failure.
func (h *CollectorHandler) respondWithRun(w http.ResponseWriter, r *http.Request, result *entities.CollectionResult) {
	status := http.StatusOK
	if len(result.Domains) > 0 && len(result.Failed()) == len(result.Domains) {
		status = http.StatusBadGateway
	}
	respondWithJSON(w, status, newRunResponse(result, includeFacilities(r)))
}

// claim reserves the request's idempotency key. A request without a key,
// or a handler without a cache, always runs.
func (h *CollectorHandler) claim(w http.ResponseWriter, r *http.Request) bool {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" || h.cache == nil {
		return true
	}

	stored, err := h.cache.SetNX(r.Context(), idempotencyCacheKey(r, key), []byte(time.Now().UTC().Format(time.RFC3339)), h.idempotencyTTL)
	if err != nil {
		// fail open; a duplicate run only replaces snapshots again
		log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency check failed")
		return true
	}
	if !stored {
		respondWithAppError(w, apperrors.NewConflictError("a collection with this idempotency key was already triggered"))
		return false
	}
	return true
}

func idempotencyCacheKey(r *http.Request, key string) string {
	return fmt.Sprintf("collector:idempotency:%s:%s", r.URL.Path, key)
}
