package movies

import (
	"context"
	"time"
)

type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Movie struct {
	ID       string    `json:"id"`
	ImdbID   string    `json:"imdbId,omitempty"`
	Title    string    `json:"title"`
	Director string    `json:"director"`
	Year     string    `json:"year"`
	Poster   string    `json:"poster"`
	Comments []Comment `json:"comments"`
}

// clone returns a copy that shares no comment storage with m.
func (m Movie) clone() Movie {
	out := m
	out.Comments = make([]Comment, len(m.Comments))
	copy(out.Comments, m.Comments)
	return out
}

// Store holds movies in insertion order. Implementations must be safe for
// concurrent use and must never hand out storage they still own.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Movie, error)
	Get(ctx context.Context, id string) (Movie, bool, error)
	Create(ctx context.Context, m Movie) error
	// Delete removes id if present. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	// AppendComment reports false when movieID is absent.
	AppendComment(ctx context.Context, movieID string, c Comment) (bool, error)
	// Seed inserts seed the first time it is called on a store and reports
	// how many movies were inserted. Later calls insert nothing, even when
	// every movie has since been deleted, so seed ids are never handed out
	// twice. A store that already holds movies is marked without inserting.
	Seed(ctx context.Context, seed []Movie) (int, error)
}

// DefaultSeed is the catalog a fresh store starts with.
func DefaultSeed() []Movie {
	return []Movie{
		{ID: "1", Title: "Movie 1", Director: "Director 1", Year: "2022", Poster: "/images/poster1.jpg"},
		{ID: "2", Title: "Movie 2", Director: "Director 2", Year: "2023", Poster: "/images/poster2.jpg"},
		{ID: "3", Title: "Movie 3", Director: "Director 3", Year: "2024", Poster: "/images/poster3.jpg"},
	}
}
