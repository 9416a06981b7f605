package handler

import (
	"encoding/json"
	"net/http"

	"mc-console-api/internal/service"
	"mc-console-api/pkg/apierror"
	"mc-console-api/pkg/response"
)

// AuthHandler handles PIN-gate HTTP requests.
type AuthHandler struct {
	sessions *service.SessionService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// PinRequest represents the request body for unlocking the console.
type PinRequest struct {
	PIN string `json:"pin"`
}

// PinResponse represents the response for a successful unlock.
type PinResponse struct {
	Token string `json:"token"`
}

// Unlock handles POST /api/v1/auth/pin
func (h *AuthHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var req PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.PIN == "" {
		response.Error(w, apierror.BadRequest("pin is required"))
		return
	}

	token, ok, err := h.sessions.VerifyPIN(r.Context(), req.PIN)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to create session"))
		return
	}
	if !ok {
		response.Error(w, apierror.Unauthorized("incorrect PIN"))
		return
	}

	response.OK(w, PinResponse{Token: token})
}

// Lock handles POST /api/v1/auth/lock
func (h *AuthHandler) Lock(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("no session token provided"))
		return
	}

	if err := h.sessions.RevokeToken(r.Context(), token); err != nil {
		response.Error(w, apierror.InternalError("failed to revoke session"))
		return
	}
	response.NoContent(w)
}
