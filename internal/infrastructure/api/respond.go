package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-analytics/internal/application"
	"storefront-analytics/internal/domain"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeServiceError maps service errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var validationErr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, domain.ErrStoreNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Store not found"})
	case errors.Is(err, application.ErrNoSyncStatus):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "No sync recorded for this store"})
	case errors.Is(err, domain.ErrStoreExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "Store already exists"})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Field:   validationErr.Field,
			Details: validationErr.Message,
		})
	default:
		logger.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   application.InternalErrorMessage,
			Details: err.Error(),
		})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return &domain.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}

func callerFrom(r *http.Request) domain.Caller {
	caller, _ := domain.CallerFromContext(r.Context())
	return caller
}
