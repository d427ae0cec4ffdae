package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nhle/kanban/internal/model"
)

const notificationsKey = "kanban:notifications"

func boardKey(id string) string { return "kanban:board:" + id }

// RedisStore implements Store on Redis. Board snapshots expire after ttl;
// notifications are a capped list.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl keeps snapshots
// forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// SaveBoard replaces the stored snapshot of b.
func (r *RedisStore) SaveBoard(ctx context.Context, b model.Board) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling board %s: %w", b.ID, err)
	}
	if err := r.client.Set(ctx, boardKey(b.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("saving board %s: %w", b.ID, err)
	}
	return nil
}

// GetBoard returns the stored snapshot of a board.
func (r *RedisStore) GetBoard(ctx context.Context, id string) (*model.Board, error) {
	data, err := r.client.Get(ctx, boardKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting board %s: %w", id, err)
	}

	var b model.Board
	if err := json.Unmarshal(data, &b); err != nil {
		_ = r.client.Del(ctx, boardKey(id)).Err()
		return nil, fmt.Errorf("unmarshaling board %s: %w", id, err)
	}
	return &b, nil
}

// DeleteBoard removes a board snapshot.
func (r *RedisStore) DeleteBoard(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, boardKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting board %s: %w", id, err)
	}
	return nil
}

// AppendNotification pushes n onto the notification list and trims it to
// MaxNotifications.
func (r *RedisStore) AppendNotification(ctx context.Context, n model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, notificationsKey, data)
		pipe.LTrim(ctx, notificationsKey, 0, MaxNotifications-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// RecentNotifications returns up to limit notifications, newest first.
// Entries that fail to decode are skipped.
func (r *RedisStore) RecentNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = MaxNotifications
	}
	raw, err := r.client.LRange(ctx, notificationsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(raw))
	for _, item := range raw {
		var n model.Notification
		if json.Unmarshal([]byte(item), &n) != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
