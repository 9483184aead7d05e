package session

import (
	"context"
	"sync"
	"time"

	"aulagate/internal/auth/models"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.LegacySession // keyed by JTI
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*models.LegacySession)}
}

func (s *InMemoryStore) Create(_ context.Context, session *models.LegacySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.JTI] = &copied
	return nil
}

func (s *InMemoryStore) FindByJTI(_ context.Context, jti string) (*models.LegacySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[jti]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, session *models.LegacySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.JTI]; !ok {
		return ErrNotFound
	}
	copied := *session
	s.sessions[session.JTI] = &copied
	return nil
}

func (s *InMemoryStore) DeleteByUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for jti, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, jti)
			deleted++
		}
	}
	return deleted, nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for jti, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, jti)
			deleted++
		}
	}
	return deleted, nil
}
