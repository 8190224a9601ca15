package handlers

import (
	"encoding/json"
	"net/http"

	"blog-backend/internal/middleware"
	"blog-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login, and status HTTP requests
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles PUT /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, badBody(err))
		return
	}

	userID, err := h.auth.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Msg("User created")
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created",
		"userId":  userID,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, badBody(err))
		return
	}

	token, userID, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully logged in",
		"token":   token,
		"userId":  userID,
	})
}

// GetStatus handles GET /auth/status
func (h *AuthHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.auth.Status(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /auth/status
func (h *AuthHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, badBody(err))
		return
	}

	if err := h.auth.UpdateStatus(r.Context(), middleware.UserID(r.Context()), req.Status); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "User updated"})
}
