package refreshtoken

import (
	"context"
	"sync"
	"time"

	"aulagate/internal/auth/models"
)

// In-memory stores keep the initial implementation lightweight and testable.
// They intentionally favor clarity over performance.
type InMemoryStore struct {
	mu    sync.RWMutex
	creds map[string]*models.RefreshCredential // keyed by credential ID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{creds: make(map[string]*models.RefreshCredential)}
}

func (s *InMemoryStore) Create(_ context.Context, cred *models.RefreshCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *cred
	s.creds[cred.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.RefreshCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.creds[id]; ok {
		copied := *cred
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) ListActive(_ context.Context, now time.Time) ([]*models.RefreshCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*models.RefreshCredential
	for _, cred := range s.creds {
		if cred.IsActive(now) {
			copied := *cred
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]*models.RefreshCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var creds []*models.RefreshCredential
	for _, cred := range s.creds {
		if cred.UserID == userID {
			copied := *cred
			creds = append(creds, &copied)
		}
	}
	return creds, nil
}

func (s *InMemoryStore) Update(_ context.Context, cred *models.RefreshCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[cred.ID]; !ok {
		return ErrNotFound
	}
	copied := *cred
	s.creds[cred.ID] = &copied
	return nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time, revokedGrace time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, cred := range s.creds {
		expired := cred.IsExpired(now)
		revokedPastGrace := cred.Revoked && cred.RevokedAt != nil && now.Sub(*cred.RevokedAt) > revokedGrace
		if expired || revokedPastGrace {
			delete(s.creds, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *InMemoryStore) CountActive(_ context.Context, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, cred := range s.creds {
		if cred.IsActive(now) {
			count++
		}
	}
	return count, nil
}
