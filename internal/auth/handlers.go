package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

const minPasswordLength = 8

// Credentials is the body of register and login requests
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) missing() bool {
	return c.Email == "" || c.Password == ""
}

// TokenResponse represents the login response
type TokenResponse struct {
	Token string `json:"token"`
}

// Profile is the authenticated user together with the models they uploaded
type Profile struct {
	ID     string       `json:"id"`
	Email  string       `json:"email"`
	Models []OwnedModel `json:"models"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers serves the account endpoints
type Handlers struct {
	service Service
	models  ModelDirectory
}

// NewHandlers creates handlers backed by the auth service and model directory
func NewHandlers(service Service, models ModelDirectory) *Handlers {
	return &Handlers{service: service, models: models}
}

// Register handles POST /auth/register
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(creds.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.service.Register(r.Context(), creds.Email, creds.Password)
	switch {
	case errors.Is(err, ErrUserExists):
		respondError(w, http.StatusConflict, "user already exists")
	case err != nil:
		log.Printf("register %s: %v", creds.Email, err)
		respondError(w, http.StatusInternalServerError, "failed to create user")
	default:
		respondJSON(w, http.StatusCreated, user)
	}
}

// Login handles POST /auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Login(r.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Me handles GET /auth/me and lists the caller's topic models
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	owned, err := h.models.ModelsOf(r.Context(), userID)
	if err != nil {
		log.Printf("models of %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch models")
		return
	}
	if owned == nil {
		owned = []OwnedModel{}
	}

	respondJSON(w, http.StatusOK, Profile{ID: claims.UserID, Email: claims.Email, Models: owned})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (Credentials, bool) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return creds, false
	}
	if creds.missing() {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return creds, false
	}
	return creds, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
