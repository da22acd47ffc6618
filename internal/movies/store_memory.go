package movies

import (
	"context"
	"sync"
)

var _ Store = (*MemStore)(nil)

type MemStore struct {
	mu     sync.RWMutex
	movies []Movie
	seeded bool
}

func NewMemStore(seed ...Movie) *MemStore {
	s := &MemStore{movies: make([]Movie, 0, len(seed)), seeded: len(seed) > 0}
	for _, m := range seed {
		s.movies = append(s.movies, m.clone())
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m.clone())
	}
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Movie, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Movie{}, false, nil
	}
	return s.movies[i].clone(), true, nil
}

func (s *MemStore) Create(ctx context.Context, m Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.movies = append(s.movies, m.clone())
	return nil
}

func (s *MemStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.movies = append(s.movies[:i], s.movies[i+1:]...)
	}
	return nil
}

func (s *MemStore) AppendComment(ctx context.Context, movieID string, c Comment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(movieID)
	if i < 0 {
		return false, nil
	}
	s.movies[i].Comments = append(s.movies[i].Comments, c)
	return true, nil
}

func (s *MemStore) Seed(ctx context.Context, seed []Movie) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded {
		return 0, nil
	}
	s.seeded = true
	if len(s.movies) > 0 {
		return 0, nil
	}
	for _, m := range seed {
		s.movies = append(s.movies, m.clone())
	}
	return len(seed), nil
}

// indexOf must be called with mu held.
func (s *MemStore) indexOf(id string) int {
	for i := range s.movies {
		if s.movies[i].ID == id {
			return i
		}
	}
	return -1
}
