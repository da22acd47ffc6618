package movies

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ironManSeed() []Movie {
	return []Movie{
		{ID: "1", Title: "Iron Man Returns", Director: "Jon Favreau", Year: "2008", Poster: "/images/ironman.jpg"},
		{ID: "2", Title: "Movie 2", Director: "Director 2", Year: "2023", Poster: "/images/poster2.jpg"},
	}
}

func TestService_ListIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(ironManSeed()...))

	first, err := svc.ListMovies(ctx)
	require.NoError(t, err)
	second, err := svc.ListMovies(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "1", first[0].ID)
	assert.Equal(t, "2", first[1].ID)
}

func TestService_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore())

	created, err := svc.CreateMovie(ctx, NewMovie{
		Title:    "Heat",
		Director: "Michael Mann",
		Year:     "1995",
		Poster:   "/images/heat.jpg",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Comments)

	got, err := svc.GetMovie(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "Heat", got.Title)
	assert.Equal(t, "Michael Mann", got.Director)
	assert.Equal(t, "1995", got.Year)
	assert.Equal(t, "/images/heat.jpg", got.Poster)
	assert.NotNil(t, got.Comments)
	assert.Empty(t, got.Comments)

	all, err := svc.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ID)
}

func TestService_CreatedIDsAreDistinct(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore())

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		m, err := svc.CreateMovie(ctx, NewMovie{Title: fmt.Sprintf("t%d", i), Director: "d", Year: "2000"})
		require.NoError(t, err)
		_, dup := seen[m.ID]
		require.False(t, dup, "duplicate id %s", m.ID)
		seen[m.ID] = struct{}{}
	}
}

func TestService_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(ironManSeed()...))

	require.NoError(t, svc.DeleteMovie(ctx, "1"))

	_, err := svc.GetMovie(ctx, "1")
	require.ErrorIs(t, err, ErrNotFound)

	all, err := svc.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2", all[0].ID)
}

func TestService_DeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(ironManSeed()...))

	before, err := svc.ListMovies(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMovie(ctx, "missing-id"))

	after, err := svc.ListMovies(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_AddComment(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	svc := NewService(NewMemStore(ironManSeed()...), WithClock(func() time.Time { return now }))

	before, err := svc.GetMovie(ctx, "1")
	require.NoError(t, err)

	c, err := svc.AddComment(ctx, "1", "Great!")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Great!", c.Text)
	assert.Equal(t, now.UTC(), c.CreatedAt)
	assert.Equal(t, time.UTC, c.CreatedAt.Location())

	after, err := svc.GetMovie(ctx, "1")
	require.NoError(t, err)
	require.Len(t, after.Comments, len(before.Comments)+1)
	assert.Equal(t, c, after.Comments[len(after.Comments)-1])
}

func TestService_AddCommentPreservesOrder(t *testing.T) {
	ctx := context.Background()
	n := 0
	svc := NewService(NewMemStore(ironManSeed()...), WithIDs(func(prefix string) string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}))

	for _, text := range []string{"first", "second", "third"} {
		_, err := svc.AddComment(ctx, "2", text)
		require.NoError(t, err)
	}

	m, err := svc.GetMovie(ctx, "2")
	require.NoError(t, err)
	require.Len(t, m.Comments, 3)
	assert.Equal(t, []string{"c_1", "c_2", "c_3"}, []string{m.Comments[0].ID, m.Comments[1].ID, m.Comments[2].ID})
	assert.Equal(t, "first", m.Comments[0].Text)
	assert.Equal(t, "third", m.Comments[2].Text)
}

func TestService_AddCommentMissingMovie(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(ironManSeed()...))

	_, err := svc.AddComment(ctx, "missing-id", "hello")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_ConcurrentComments(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemStore(ironManSeed()...))

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := svc.AddComment(ctx, "1", "hi")
				assert.NoError(t, err)
				_, err = svc.ListMovies(ctx)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	m, err := svc.GetMovie(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, m.Comments, workers*perWorker)
}

func TestMemStore_Seed(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	n, err := store.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = store.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemStore_SeedDoesNotReviveDeletedIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	svc := NewService(store)

	_, err := store.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, svc.DeleteMovie(ctx, id))
	}

	n, err := store.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.GetMovie(ctx, "1")
	require.ErrorIs(t, err, ErrNotFound)

	all, err := svc.ListMovies(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemStore_SeedSkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.Create(ctx, Movie{ID: "m_1", Title: "Heat"}))

	n, err := store.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, store.Delete(ctx, "m_1"))
	n, err = store.Seed(ctx, DefaultSeed())
	require.NoError(t, err)
	assert.Zero(t, n)
}
