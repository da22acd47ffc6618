package movies

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgresStore(db), mock
}

var movieCols = []string{"id", "imdb_id", "title", "director", "year", "poster"}

func TestPostgresStore_List(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM movies ORDER BY seq").
		WillReturnRows(sqlmock.NewRows(movieCols).
			AddRow("1", "", "Iron Man Returns", "Jon Favreau", "2008", "/images/ironman.jpg").
			AddRow("2", "tt1", "Movie 2", "Director 2", "2023", "/images/poster2.jpg"))
	mock.ExpectQuery("FROM movie_comments ORDER BY seq").
		WillReturnRows(sqlmock.NewRows([]string{"movie_id", "id", "text", "created_at"}).
			AddRow("1", "c_1", "Great!", at).
			AddRow("1", "c_2", "Again", at).
			AddRow("gone", "c_3", "orphan", at))
	mock.ExpectCommit()

	got, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].ID)
	require.Len(t, got[0].Comments, 2)
	assert.Equal(t, "Great!", got[0].Comments[0].Text)
	assert.Equal(t, "c_2", got[0].Comments[1].ID)

	assert.Equal(t, "tt1", got[1].ImdbID)
	assert.NotNil(t, got[1].Comments)
	assert.Empty(t, got[1].Comments)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListQueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM movies").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := s.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list movies")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("FROM movies WHERE id").
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows(movieCols).
			AddRow("1", "", "Iron Man Returns", "Jon Favreau", "2008", "/images/ironman.jpg"))
	mock.ExpectQuery("FROM movie_comments WHERE movie_id").
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "text", "created_at"}).
			AddRow("c_1", "Great!", at))

	m, ok, err := s.Get(context.Background(), "1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Iron Man Returns", m.Title)
	require.Len(t, m.Comments, 1)
	assert.Equal(t, at, m.Comments[0].CreatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("FROM movies WHERE id").
		WithArgs("missing-id").
		WillReturnRows(sqlmock.NewRows(movieCols))

	_, ok, err := s.Get(context.Background(), "missing-id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateWithComments(t *testing.T) {
	s, mock := newMockStore(t)
	m := Movie{
		ID: "1", Title: "Movie 1", Director: "Director 1", Year: "2022", Poster: "/images/poster1.jpg",
		Comments: []Comment{{ID: "c_1", Text: "seeded", CreatedAt: time.Now().UTC()}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movies").
		WithArgs("1", "", "Movie 1", "Director 1", "2022", "/images/poster1.jpg").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare("INSERT INTO movie_comments").
		ExpectExec().
		WithArgs("c_1", "1", "seeded", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Create(context.Background(), m))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movies").WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := s.Create(context.Background(), Movie{ID: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create movie")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Seed(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO catalog_meta").
		WithArgs(seedMarker).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	for _, m := range DefaultSeed() {
		mock.ExpectExec("INSERT INTO movies").
			WithArgs(m.ID, "", m.Title, m.Director, m.Year, m.Poster).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	n, err := s.Seed(context.Background(), DefaultSeed())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeedAfterDeleteAll(t *testing.T) {
	s, mock := newMockStore(t)

	// The marker row survives even when every seeded movie is deleted.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO catalog_meta").
		WithArgs(seedMarker).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	n, err := s.Seed(context.Background(), DefaultSeed())
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SeedPopulatedCatalog(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO catalog_meta").
		WithArgs(seedMarker).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	n, err := s.Seed(context.Background(), DefaultSeed())
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM movies").
		WithArgs("missing-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), "missing-id"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendComment(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantOK  bool
		wantErr bool
	}{
		{name: "inserted", wantOK: true},
		{name: "movie missing", err: &pgconn.PgError{Code: "23503"}},
		{name: "other failure", err: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)

			exp := mock.ExpectExec("INSERT INTO movie_comments").
				WithArgs("c_1", "1", "Great!", sqlmock.AnyArg())
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			ok, err := s.AppendComment(context.Background(), "1", Comment{ID: "c_1", Text: "Great!", CreatedAt: time.Now().UTC()})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOK, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
