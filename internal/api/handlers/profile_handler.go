package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/taskhive-be/internal/auth"
	"github.com/taskhive/taskhive-be/internal/services"
)

// ProfileHandler handles the authenticated user's own profile.
type ProfileHandler struct {
	users  services.UserServiceProvider
	events services.EventServiceProvider
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users services.UserServiceProvider, events services.EventServiceProvider) *ProfileHandler {
	return &ProfileHandler{users: users, events: events}
}

// GetMe returns the caller's own profile.
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Not authenticated. Please provide a valid token.")
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// Valid token for a since-deleted account.
			RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondServiceError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, "", user)
}

// UpdateMe updates the caller's name and/or email. At least one field is
// required; a supplied email must not belong to another account.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondError(w, http.StatusUnauthorized, "Not authenticated. Please provide a valid token.")
		return
	}

	var payload struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Name == nil && payload.Email == nil {
		RespondError(w, http.StatusBadRequest, "Please provide at least one field to update")
		return
	}
	if payload.Name != nil && *payload.Name == "" {
		RespondError(w, http.StatusBadRequest, "Validation error", "name must not be empty")
		return
	}
	if payload.Email != nil && *payload.Email == "" {
		RespondError(w, http.StatusBadRequest, "Validation error", "email must not be empty")
		return
	}

	user, err := h.users.UpdateProfile(userID, payload.Name, payload.Email)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			RespondError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	h.events.RecordEvent("user.update", "info", "Profile updated", userID, nil)
	RespondSuccess(w, http.StatusOK, "Profile updated successfully", user)
}
