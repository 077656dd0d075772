package service

import (
	"strings"
	"sync"
	"time"

	"github.com/abrito/financas/financas-sync/pkg/domain"
	"github.com/google/uuid"
)

// SessionTTL is how long an anonymous session stays valid. Long on
// purpose: a phone that was offline for a few weeks should still sync.
const SessionTTL = 30 * 24 * time.Hour

// Session is one anonymous device session bound to a family group.
type Session struct {
	Token     uuid.UUID
	FamilyID  string
	CreatedAt time.Time
}

// SessionService issues and validates anonymous sessions. There is no
// external identity provider: membership is knowing the family id, which
// is exactly the trust model of a two-person household service.
type SessionService struct {
	enabled  bool
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionService creates a SessionService. When enabled is false every
// sign-in attempt fails with domain.ErrAuthDisabled, which clients treat
// as the expected offline-only mode.
func NewSessionService(enabled bool) *SessionService {
	return &SessionService{
		enabled:  enabled,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// CreateAnonymous issues a new session for a family group.
func (s *SessionService) CreateAnonymous(familyID string) (*Session, error) {
	if !s.enabled {
		return nil, domain.ErrAuthDisabled
	}
	familyID = strings.TrimSpace(familyID)
	if familyID == "" {
		return nil, domain.ErrInvalidInput
	}

	session := &Session{
		Token:     uuid.New(),
		FamilyID:  familyID,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session, nil
}

// Validate resolves a bearer token to its session.
func (s *SessionService) Validate(token string) (*Session, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if time.Since(session.CreatedAt) > SessionTTL {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}
