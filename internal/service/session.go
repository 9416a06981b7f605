package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"mc-console-api/internal/cache"
	"mc-console-api/internal/model"
)

const (
	// SessionTokenPrefix is the prefix for all console session tokens
	SessionTokenPrefix = "mcs_"

	// sessionCacheKeyPrefix is the cache key prefix for sessions
	sessionCacheKeyPrefix = "session:"
)

// SessionService implements the PIN access gate: a correct PIN buys a
// session token with a fixed lifetime. This is a convenience lock for the
// console, not an authentication system.
type SessionService struct {
	cache      cache.Cache
	pin        string
	sessionTTL time.Duration
}

// NewSessionService creates a new session service.
func NewSessionService(sessionCache cache.Cache, pin string, sessionTTL time.Duration) *SessionService {
	return &SessionService{
		cache:      sessionCache,
		pin:        pin,
		sessionTTL: sessionTTL,
	}
}

// VerifyPIN checks the submitted PIN and, when correct, issues a new
// session token. An incorrect PIN returns ok=false with no error.
func (s *SessionService) VerifyPIN(ctx context.Context, pin string) (token string, ok bool, err error) {
	if subtle.ConstantTimeCompare([]byte(pin), []byte(s.pin)) != 1 {
		return "", false, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", false, fmt.Errorf("failed to generate session token: %w", err)
	}
	token = SessionTokenPrefix + hex.EncodeToString(tokenBytes)

	now := time.Now().UTC()
	data := model.SessionData{
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", false, fmt.Errorf("failed to serialize session: %w", err)
	}

	if err := s.cache.Set(ctx, sessionCacheKeyPrefix+token, jsonData, s.sessionTTL); err != nil {
		return "", false, fmt.Errorf("failed to store session: %w", err)
	}

	log.Printf("[SessionService] Session issued, expires=%v", data.ExpiresAt)
	return token, true, nil
}

// ValidateToken checks if a session token is valid and unexpired.
func (s *SessionService) ValidateToken(ctx context.Context, token string) (*model.SessionData, error) {
	if token == "" {
		return nil, fmt.Errorf("empty session token")
	}

	if len(token) < len(SessionTokenPrefix) || token[:len(SessionTokenPrefix)] != SessionTokenPrefix {
		return nil, fmt.Errorf("invalid session token format")
	}

	jsonData, err := s.cache.Get(ctx, sessionCacheKeyPrefix+token)
	if err == cache.ErrCacheMiss {
		return nil, fmt.Errorf("session not found or expired")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var data model.SessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session data: %w", err)
	}

	if time.Now().After(data.ExpiresAt) {
		_ = s.cache.Delete(ctx, sessionCacheKeyPrefix+token)
		return nil, fmt.Errorf("session expired")
	}

	return &data, nil
}

// RevokeToken deletes a session token.
func (s *SessionService) RevokeToken(ctx context.Context, token string) error {
	return s.cache.Delete(ctx, sessionCacheKeyPrefix+token)
}
