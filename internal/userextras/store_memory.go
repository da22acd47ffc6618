package userextras

import (
	"context"
	"sync"
)

var _ Store = (*MemStore)(nil)

type MemStore struct {
	mu      sync.RWMutex
	avatars map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{avatars: make(map[string]string)}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Get(ctx context.Context, subject string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.avatars[subject]
	return a, ok, nil
}

func (s *MemStore) Set(ctx context.Context, subject, avatar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.avatars[subject] = avatar
	return nil
}
