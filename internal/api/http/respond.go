package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"atv-rental-backend/internal/domain"
	"atv-rental-backend/internal/logger"
	"atv-rental-backend/internal/security"
	"atv-rental-backend/internal/service"
)

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"message"`
	Allowed []string `json:"allowed_transitions,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain and service errors onto HTTP status codes.
// Validation-shaped failures use 422 to match what API clients expect
// from form submission errors.
func writeError(w http.ResponseWriter, err error) {
	var notFound *domain.NotFoundError
	var invalidTransition *domain.InvalidTransitionError
	var conflict *domain.ConflictError
	var invalidInterval *domain.InvalidIntervalError

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Error()})

	case errors.As(err, &invalidTransition):
		resp := errorResponse{Error: invalidTransition.Error()}
		for _, s := range invalidTransition.Allowed {
			resp.Allowed = append(resp.Allowed, string(s))
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)

	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflict.Error()})

	case errors.As(err, &invalidInterval):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: invalidInterval.Error()})

	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrVehicleUnavailable),
		errors.Is(err, domain.ErrVehicleHasRentals),
		errors.Is(err, service.ErrVehicleStatusLocked),
		errors.Is(err, service.ErrWrongPassword):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrSerialNumberTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})

	case errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrWrongTokenType):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})

	default:
		logger.Error("Internal server error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
