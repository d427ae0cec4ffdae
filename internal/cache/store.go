// Package cache keeps the last-seen snapshot of each board and the
// notification history on the local machine, so the board can still be
// shown when the service is unreachable.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/nhle/kanban/internal/model"
)

// ErrNotFound is returned when no snapshot exists for a board.
var ErrNotFound = errors.New("not cached")

// MaxNotifications is how many notifications a store keeps.
const MaxNotifications = 200

// Store persists board snapshots and notifications.
type Store interface {
	SaveBoard(ctx context.Context, b model.Board) error
	GetBoard(ctx context.Context, id string) (*model.Board, error)
	DeleteBoard(ctx context.Context, id string) error

	AppendNotification(ctx context.Context, n model.Notification) error
	// RecentNotifications returns up to limit notifications, newest first.
	RecentNotifications(ctx context.Context, limit int) ([]model.Notification, error)

	Close() error
}

// Open returns the store selected by cfg.Backend.
func Open(ctx context.Context, cfg model.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", "sqlite":
		if cfg.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return nil, fmt.Errorf("creating cache directory: %w", err)
			}
		}
		return NewSQLiteStore(cfg.Path)
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return NewRedisStore(client, cfg.TTL()), nil
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Nop is a Store that keeps nothing.
type Nop struct{}

func (Nop) SaveBoard(context.Context, model.Board) error { return nil }

func (Nop) GetBoard(context.Context, string) (*model.Board, error) { return nil, ErrNotFound }

func (Nop) DeleteBoard(context.Context, string) error { return nil }

func (Nop) AppendNotification(context.Context, model.Notification) error { return nil }

func (Nop) RecentNotifications(context.Context, int) ([]model.Notification, error) {
	return nil, nil
}

func (Nop) Close() error { return nil }
