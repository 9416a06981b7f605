package model

import "time"

// SessionData is stored behind a PIN-gate session token. The gate is a
// convenience lock for the console, not a security boundary.
type SessionData struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
