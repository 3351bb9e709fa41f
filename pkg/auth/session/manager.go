package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/config"
	redisclient "github.com/angelmondragon/marketplace-backend/pkg/redis"
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(sessionID string) string
}

// Manager tracks live access-token sessions in redis so logout can revoke a
// token before it expires.
type Manager struct {
	store sessionStore
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return newManager(client, cfg.TTL())
}

func newManager(store sessionStore, ttl time.Duration) (*Manager, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Create registers a new session for userID and returns its id (the token jti).
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id is required")
	}
	sessionID := uuid.NewString()
	if err := m.store.Set(ctx, m.store.SessionKey(sessionID), userID.String(), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return sessionID, nil
}

// Revoke deletes the session; revoking an unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("session id is required")
	}
	return m.store.Del(ctx, m.store.SessionKey(sessionID))
}

// HasSession reports whether sessionID is still live.
func (m *Manager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, nil
	}
	if _, err := m.store.Get(ctx, m.store.SessionKey(sessionID)); err != nil {
		if errors.Is(err, redisclient.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
