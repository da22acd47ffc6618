package userextras

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const queryTimeout = 3 * time.Second

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Get(ctx context.Context, subject string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var avatar string
	err := s.db.QueryRowContext(ctx, `
		SELECT avatar
		FROM user_avatars
		WHERE subject = $1
	`, subject).Scan(&avatar)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get avatar: %w", err)
	}
	return avatar, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, subject, avatar string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_avatars (subject, avatar, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (subject) DO UPDATE
		SET avatar = EXCLUDED.avatar, updated_at = EXCLUDED.updated_at
	`, subject, avatar)
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}
	return nil
}
