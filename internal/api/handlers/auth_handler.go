package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/taskhive-be/internal/auth"
	"github.com/taskhive/taskhive-be/internal/models"
	"github.com/taskhive/taskhive-be/internal/services"
)

// AuthHandler handles signup and login.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens *auth.Manager
	events services.EventServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens *auth.Manager, events services.EventServiceProvider) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, events: events}
}

// SignupPayload defines the structure for registration requests.
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionData is the response body shared by signup and login.
type sessionData struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Signup handles new user registration and issues a session token.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var fields []string
	if payload.Name == "" {
		fields = append(fields, "name is required")
	}
	if payload.Email == "" {
		fields = append(fields, "email is required")
	}
	if len(payload.Password) < 6 {
		fields = append(fields, "password must be at least 6 characters")
	}
	if len(fields) > 0 {
		RespondError(w, http.StatusBadRequest, "Please provide name, email, and password", fields...)
		return
	}

	user, err := h.users.CreateUser(payload.Name, payload.Email, payload.Password)
	if err != nil {
		if !errors.Is(err, services.ErrDuplicateEmail) {
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		}
		respondServiceError(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		RespondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.events.RecordEvent("user.signup", "info", "Account created", user.ID, nil)
	RespondSuccess(w, http.StatusCreated, "User registered successfully", sessionData{Token: token, User: user})
}

// Login handles user authentication and token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		RespondError(w, http.StatusBadRequest, "Please provide email and password")
		return
	}

	user, err := h.users.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		}
		respondServiceError(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		RespondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.events.RecordEvent("user.login", "info", "Logged in", user.ID, nil)
	RespondSuccess(w, http.StatusOK, "Login successful", sessionData{Token: token, User: user})
}
