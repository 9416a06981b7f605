package middleware

import (
	"net/http"
	"strings"

	"mc-console-api/internal/service"
	"mc-console-api/pkg/apierror"
)

// AccessGateConfig holds configuration for the PIN access gate middleware.
type AccessGateConfig struct {
	Sessions *service.SessionService
}

// NewAccessGate creates the session-checking middleware for the console API.
// The PIN endpoint itself, the public status endpoint and the static bundle
// stay reachable without a session.
func NewAccessGate(cfg AccessGateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Sessions == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-Session-Token")
			if token == "" {
				auth := r.Header.Get("Authorization")
				if strings.HasPrefix(auth, "Bearer ") {
					token = strings.TrimPrefix(auth, "Bearer ")
				}
			}

			if token == "" {
				writeError(w, apierror.Unauthorized("Session required. Unlock with the console PIN first."))
				return
			}

			if _, err := cfg.Sessions.ValidateToken(r.Context(), token); err != nil {
				writeError(w, apierror.Unauthorized("Invalid or expired session"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
