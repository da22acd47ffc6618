package movies

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("movie not found")

// Service implements the catalog operations on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
	newID func(prefix string) string
}

type Option func(*Service)

// WithClock overrides the clock used for comment timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides id generation.
func WithIDs(newID func(prefix string) string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		newID: func(prefix string) string { return prefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) ListMovies(ctx context.Context) ([]Movie, error) {
	return s.store.List(ctx)
}

func (s *Service) GetMovie(ctx context.Context, id string) (Movie, error) {
	m, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Movie{}, err
	}
	if !ok {
		return Movie{}, ErrNotFound
	}
	return m, nil
}

func (s *Service) CreateMovie(ctx context.Context, in NewMovie) (Movie, error) {
	m := Movie{
		ID:       s.newID("m_"),
		ImdbID:   in.ImdbID,
		Title:    in.Title,
		Director: in.Director,
		Year:     in.Year,
		Poster:   in.Poster,
		Comments: []Comment{},
	}

	if err := s.store.Create(ctx, m); err != nil {
		return Movie{}, err
	}
	return m, nil
}

// DeleteMovie succeeds whether or not id exists.
func (s *Service) DeleteMovie(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) AddComment(ctx context.Context, movieID, text string) (Comment, error) {
	c := Comment{
		ID:        s.newID("c_"),
		Text:      text,
		CreatedAt: s.now().UTC(),
	}

	ok, err := s.store.AppendComment(ctx, movieID, c)
	if err != nil {
		return Comment{}, err
	}
	if !ok {
		return Comment{}, ErrNotFound
	}
	return c, nil
}
