package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/facilities-collector/internal/api/handlers"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

func sampleRun(failed ...entities.Domain) *entities.CollectionResult {
	result := &entities.CollectionResult{
		RunID:      "run-1",
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC),
		Domains:    []entities.DomainSummary{{Domain: entities.DomainHealth, Facilities: 1}},
		Facilities: []*entities.Facility{entities.NewFacility("vha_402", &entities.FacilityAttributes{Name: "Togus VA Medical Center"})},
	}
	for _, d := range failed {
		result.Domains = append(result.Domains, entities.DomainSummary{Domain: d, Error: "boom"})
	}
	return result
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCollectorHandler_CollectAll(t *testing.T) {
	t.Run("returns the run summary", func(t *testing.T) {
		runner := new(MockCollectionRunner)
		runner.On("CollectAll", mock.Anything).Return(sampleRun(entities.DomainBenefits), nil)
		handler := handlers.NewCollectorHandler(runner, nil, nil, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/api/collect", nil)
		w := httptest.NewRecorder()
		handler.CollectAll(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "run-1", body["run_id"])
		assert.Equal(t, float64(1), body["count"])
		assert.NotContains(t, body, "facilities")
		assert.Len(t, body["domains"], 2)
		runner.AssertExpectations(t)
	})

	t.Run("includes facilities on request", func(t *testing.T) {
		runner := new(MockCollectionRunner)
		runner.On("CollectAll", mock.Anything).Return(sampleRun(), nil)
		handler := handlers.NewCollectorHandler(runner, nil, nil, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/api/collect?include=facilities", nil)
		w := httptest.NewRecorder()
		handler.CollectAll(w, req)

		body := decodeBody(t, w)
		require.Len(t, body["facilities"], 1)
		first := body["facilities"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "vha_402", first["id"])
		assert.Equal(t, "va_facilities", first["type"])
	})

	t.Run("every domain failed", func(t *testing.T) {
		run := sampleRun(entities.DomainBenefits)
		run.Domains[0].Error = "boom"
		run.Facilities = nil

		runner := new(MockCollectionRunner)
		runner.On("CollectAll", mock.Anything).Return(run, nil)
		handler := handlers.NewCollectorHandler(runner, nil, nil, time.Hour)

		w := httptest.NewRecorder()
		handler.CollectAll(w, httptest.NewRequest(http.MethodPost, "/api/collect", nil))
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("idempotency key blocks a repeated trigger", func(t *testing.T) {
		runner := new(MockCollectionRunner)
		runner.On("CollectAll", mock.Anything).Return(sampleRun(), nil).Once()
		handler := handlers.NewCollectorHandler(runner, nil, newMemoryCache(), time.Hour)

		for i, expected := range []int{http.StatusOK, http.StatusConflict} {
			req := httptest.NewRequest(http.MethodPost, "/api/collect", nil)
			req.Header.Set(handlers.IdempotencyKeyHeader, "nightly-2026-03-01")
			w := httptest.NewRecorder()
			handler.CollectAll(w, req)
			assert.Equal(t, expected, w.Code, "request %d", i)
		}
		runner.AssertNumberOfCalls(t, "CollectAll", 1)
	})
}

func TestCollectorHandler_CollectDomain(t *testing.T) {
	t.Run("accepts dashed domain names", func(t *testing.T) {
		runner := new(MockCollectionRunner)
		runner.On("Collect", mock.Anything, []entities.Domain{entities.DomainStateCemeteries}).Return(sampleRun(), nil)
		handler := handlers.NewCollectorHandler(runner, nil, nil, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/api/collect/state-cemeteries", nil)
		req.SetPathValue("domain", "state-cemeteries")
		w := httptest.NewRecorder()
		handler.CollectDomain(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		runner.AssertExpectations(t)
	})

	t.Run("unknown domain", func(t *testing.T) {
		runner := new(MockCollectionRunner)
		handler := handlers.NewCollectorHandler(runner, nil, nil, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/api/collect/parks", nil)
		req.SetPathValue("domain", "parks")
		w := httptest.NewRecorder()
		handler.CollectDomain(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		runner.AssertNotCalled(t, "Collect", mock.Anything, mock.Anything)
	})

	t.Run("domain without collector", func(t *testing.T) {
		runner := new(MockCollectionRunner)
		runner.On("Collect", mock.Anything, []entities.Domain{entities.DomainVetCenters}).
			Return(nil, apperrors.NewValidationError("unknown domain: vet_centers"))
		handler := handlers.NewCollectorHandler(runner, nil, nil, time.Hour)

		req := httptest.NewRequest(http.MethodPost, "/api/collect/vet_centers", nil)
		req.SetPathValue("domain", "vet_centers")
		w := httptest.NewRecorder()
		handler.CollectDomain(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCollectorHandler_Latest(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		latest := new(MockLatestResultReader)
		latest.On("LatestResult", mock.Anything).Return(sampleRun(), nil)
		handler := handlers.NewCollectorHandler(new(MockCollectionRunner), latest, nil, time.Hour)

		w := httptest.NewRecorder()
		handler.Latest(w, httptest.NewRequest(http.MethodGet, "/api/collect/latest", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "run-1", decodeBody(t, w)["run_id"])
	})

	t.Run("nothing yet", func(t *testing.T) {
		latest := new(MockLatestResultReader)
		latest.On("LatestResult", mock.Anything).Return(nil, apperrors.NewNotFoundError("no collection run finished yet"))
		handler := handlers.NewCollectorHandler(new(MockCollectionRunner), latest, nil, time.Hour)

		w := httptest.NewRecorder()
		handler.Latest(w, httptest.NewRequest(http.MethodGet, "/api/collect/latest", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("cache failure", func(t *testing.T) {
		latest := new(MockLatestResultReader)
		latest.On("LatestResult", mock.Anything).Return(nil, errors.New("i/o timeout"))
		handler := handlers.NewCollectorHandler(new(MockCollectionRunner), latest, nil, time.Hour)

		w := httptest.NewRecorder()
		handler.Latest(w, httptest.NewRequest(http.MethodGet, "/api/collect/latest", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decodeBody(t, w)["error"])
	})
}
