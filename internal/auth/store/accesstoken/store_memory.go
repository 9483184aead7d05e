package accesstoken

import (
	"context"
	"sync"
	"time"

	"aulagate/internal/auth/models"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.AccessRecord // keyed by token
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.AccessRecord)}
}

func (s *InMemoryStore) Create(_ context.Context, record *models.AccessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[record.Token] = &copied
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, token string) (*models.AccessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[token]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[token]; !ok {
		return ErrNotFound
	}
	delete(s.records, token)
	return nil
}

func (s *InMemoryStore) DeleteByUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for token, record := range s.records {
		if record.UserID == userID {
			delete(s.records, token)
			deleted++
		}
	}
	return deleted, nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for token, record := range s.records {
		if record.IsExpired(now) {
			delete(s.records, token)
			deleted++
		}
	}
	return deleted, nil
}
