package userextras

import "context"

// Store keeps one avatar per subject.
type Store interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, subject string) (string, bool, error)
	Set(ctx context.Context, subject, avatar string) error
}
