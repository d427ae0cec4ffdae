package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/kanban/internal/cache"
	"github.com/nhle/kanban/internal/model"
	"github.com/nhle/kanban/tests/testutil"
)

func setupRedis(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *cache.RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { _ = s.Close() })
	return mr, s
}

func TestRedisBoardSnapshot(t *testing.T) {
	mr, s := setupRedis(t, time.Minute)
	ctx := context.Background()

	b := testutil.NewBoard("b1", "one")
	require.NoError(t, s.SaveBoard(ctx, b))
	assert.True(t, mr.Exists("kanban:board:b1"))

	got, err := s.GetBoard(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, b, *got)

	mr.FastForward(2 * time.Minute)
	_, err = s.GetBoard(ctx, "b1")
	assert.True(t, errors.Is(err, cache.ErrNotFound))
}

func TestRedisCorruptSnapshotIsDropped(t *testing.T) {
	mr, s := setupRedis(t, 0)
	require.NoError(t, mr.Set("kanban:board:bad", "{not json"))

	_, err := s.GetBoard(context.Background(), "bad")
	require.Error(t, err)
	assert.False(t, mr.Exists("kanban:board:bad"))
}

func TestRedisDeleteBoard(t *testing.T) {
	_, s := setupRedis(t, 0)
	ctx := context.Background()
	require.NoError(t, s.SaveBoard(ctx, testutil.NewBoard("b2")))
	require.NoError(t, s.DeleteBoard(ctx, "b2"))
	_, err := s.GetBoard(ctx, "b2")
	assert.True(t, errors.Is(err, cache.ErrNotFound))
}

func TestRedisNotifications(t *testing.T) {
	_, s := setupRedis(t, 0)
	ctx := context.Background()

	for i := 0; i < cache.MaxNotifications+3; i++ {
		require.NoError(t, s.AppendNotification(ctx, model.Notification{
			Headline: fmt.Sprintf("n%d", i),
		}))
	}

	all, err := s.RecentNotifications(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, cache.MaxNotifications)

	latest, err := s.RecentNotifications(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, fmt.Sprintf("n%d", cache.MaxNotifications+2), latest[0].Headline)
}

func TestOpenRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := cache.Open(context.Background(), model.CacheConfig{
		Backend:  "redis",
		RedisURL: "redis://" + mr.Addr() + "/0",
		TTLSec:   60,
	})
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.SaveBoard(context.Background(), testutil.NewBoard("b3")))
}
