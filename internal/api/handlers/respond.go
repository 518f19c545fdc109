package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/taskhive-be/internal/services"
)

// envelope is the uniform JSON response wrapper used across all endpoints.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// RespondSuccess writes a success envelope.
func RespondSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// RespondList writes a success envelope for collections, including a count.
func RespondList(w http.ResponseWriter, data interface{}, count int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

// RespondError writes a failure envelope with an optional field-level error
// list. Messages are short human-readable strings, never stack traces or
// internal identifiers.
func RespondError(w http.ResponseWriter, status int, message string, fieldErrors ...string) {
	writeJSON(w, status, envelope{Success: false, Message: message, Errors: fieldErrors})
}

// respondServiceError maps a service-layer failure to a response status:
// validation and duplicate email to 400, invalid credentials to 401, missing
// (or non-owned) records to 404, anything unexpected to 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		RespondError(w, http.StatusBadRequest, vErr.Message, vErr.Fields...)
	case errors.Is(err, services.ErrDuplicateEmail):
		RespondError(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, services.ErrInvalidCredentials):
		RespondError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrNotFound):
		RespondError(w, http.StatusNotFound, "Not found")
	default:
		log.Error().Err(err).Msg("Unexpected error handling request")
		RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
