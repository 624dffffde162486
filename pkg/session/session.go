// Package session keeps track of signed-in users.
//
// Clients hold an opaque token; stores only ever see its SHA-256 hash. Two
// backends exist: an in-process LRU with expiry for single instances and
// Redis for deployments that run more than one replica.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frezendesp/GroupManagement/pkg/auth"
)

// ErrNotFound is returned for unknown, expired or malformed tokens
var ErrNotFound = errors.New("session not found")

// Session binds a token hash to a user
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions keyed by token hash
type Store interface {
	Save(ctx context.Context, s *Session) error
	// Get returns ErrNotFound when no live session has that id
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager issues and resolves session tokens
type Manager struct {
	store  Store
	tokens *auth.TokenGenerator
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a session manager
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		tokens: auth.NewTokenGenerator(),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the lifetime of new sessions
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a session for userID and returns the client token
func (m *Manager) Create(ctx context.Context, userID int64, ip string) (string, *Session, error) {
	token, hash, err := m.tokens.GenerateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := m.now().UTC()
	s := &Session{
		ID:        hash,
		UserID:    userID,
		IPAddress: ip,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}
	return token, s, nil
}

// Resolve returns the live session for token
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if err := m.tokens.ValidateTokenFormat(token); err != nil {
		return nil, ErrNotFound
	}

	id := m.tokens.HashToken(token)
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return s, nil
}

// Destroy ends the session for token. Unknown tokens are ignored.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if err := m.tokens.ValidateTokenFormat(token); err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, m.tokens.HashToken(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
