package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	pgForeignKeyViolation = "23503"

	seedMarker = "catalog_seeded"
)

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context) ([]Movie, error) {
	var out []Movie

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, imdb_id, title, director, year, poster
			FROM movies
			ORDER BY seq ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Movie, 0, 16)
		index := make(map[string]int)
		for rows.Next() {
			var m Movie
			if err := rows.Scan(&m.ID, &m.ImdbID, &m.Title, &m.Director, &m.Year, &m.Poster); err != nil {
				return err
			}
			m.Comments = []Comment{}
			index[m.ID] = len(out)
			out = append(out, m)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		crows, err := tx.QueryContext(ctx, `
			SELECT movie_id, id, text, created_at
			FROM movie_comments
			ORDER BY seq ASC
		`)
		if err != nil {
			return err
		}
		defer crows.Close()

		for crows.Next() {
			var (
				movieID string
				c       Comment
			)
			if err := crows.Scan(&movieID, &c.ID, &c.Text, &c.CreatedAt); err != nil {
				return err
			}
			if i, ok := index[movieID]; ok {
				c.CreatedAt = c.CreatedAt.UTC()
				out[i].Comments = append(out[i].Comments, c)
			}
		}
		if err := crows.Err(); err != nil {
			return err
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Movie, bool, error) {
	var m Movie

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		err := s.db.QueryRowContext(ctx, `
			SELECT id, imdb_id, title, director, year, poster
			FROM movies
			WHERE id = $1
		`, id).Scan(&m.ID, &m.ImdbID, &m.Title, &m.Director, &m.Year, &m.Poster)
		if err != nil {
			return err
		}

		rows, err := s.db.QueryContext(ctx, `
			SELECT id, text, created_at
			FROM movie_comments
			WHERE movie_id = $1
			ORDER BY seq ASC
		`, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		m.Comments = make([]Comment, 0, 8)
		for rows.Next() {
			var c Comment
			if err := rows.Scan(&c.ID, &c.Text, &c.CreatedAt); err != nil {
				return err
			}
			c.CreatedAt = c.CreatedAt.UTC()
			m.Comments = append(m.Comments, c)
		}
		return rows.Err()
	})

	if errors.Is(err, sql.ErrNoRows) {
		return Movie{}, false, nil
	}
	if err != nil {
		return Movie{}, false, fmt.Errorf("failed to get movie %s: %w", id, err)
	}
	return m, true, nil
}

func (s *PostgresStore) Create(ctx context.Context, m Movie) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if err := insertMovie(ctx, tx, m); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}
	return nil
}

// Seed claims the seed marker row in catalog_meta and inserts seed in the
// same transaction, so concurrent starts seed at most once.
func (s *PostgresStore) Seed(ctx context.Context, seed []Movie) (int, error) {
	var n int

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx, `
			INSERT INTO catalog_meta (key, value)
			VALUES ($1, 'true')
			ON CONFLICT (key) DO NOTHING
		`, seedMarker)
		if err != nil {
			return err
		}
		claimed, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if claimed == 0 {
			return nil
		}

		var existing int
		if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM movies`).Scan(&existing); err != nil {
			return err
		}
		if existing == 0 {
			for _, m := range seed {
				if err := insertMovie(ctx, tx, m); err != nil {
					return err
				}
			}
			n = len(seed)
		}

		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed movies: %w", err)
	}
	return n, nil
}

func insertMovie(ctx context.Context, tx *sql.Tx, m Movie) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO movies (id, imdb_id, title, director, year, poster)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.ID, m.ImdbID, m.Title, m.Director, m.Year, m.Poster)
	if err != nil {
		return err
	}
	if len(m.Comments) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO movie_comments (id, movie_id, text, created_at)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range m.Comments {
		if _, err := stmt.ExecContext(ctx, c.ID, m.ID, c.Text, c.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete movie %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) AppendComment(ctx context.Context, movieID string, c Comment) (bool, error) {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO movie_comments (id, movie_id, text, created_at)
			VALUES ($1, $2, $3, $4)
		`, c.ID, movieID, c.Text, c.CreatedAt)
		return err
	})
	if isForeignKeyViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to append comment: %w", err)
	}
	return true, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
