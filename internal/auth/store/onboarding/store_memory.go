package onboarding

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	completed map[string]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{completed: make(map[string]bool)}
}

// Completed reports whether the user has finished the mandatory questionnaire.
// Users with no recorded state have not completed it.
func (s *InMemoryStore) Completed(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed[userID], nil
}

func (s *InMemoryStore) SetCompleted(_ context.Context, userID string, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[userID] = completed
	return nil
}
