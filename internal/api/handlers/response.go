package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an AppError to its status code. Anything else is
// an internal error whose details stay in the log.
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
			return
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
			return
		case apperrors.ErrorTypeExternal:
			log.Error().Err(err).Msg("upstream failure")
			respondWithError(w, http.StatusBadGateway, appErr.Message)
			return
		}
	}
	log.Error().Err(err).Msg("request failed")
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
