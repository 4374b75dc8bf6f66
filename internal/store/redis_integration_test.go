//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/serroba/onxpoint/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestRedisStoreIntegration(t *testing.T) {
	client, err := store.NewRedisClient(store.RedisOptions{Addr: getRedisAddr(), PoolSize: 2})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	s := store.NewRedisStore(client)

	t.Run("ping succeeds", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})

	t.Run("set and get value", func(t *testing.T) {
		key := store.URLKey("itest123")

		var got string
		err := s.WithConn(ctx, func(c store.Conn) error {
			if err := c.Set(ctx, key, "https://example.com"); err != nil {
				return err
			}
			var err error
			got, err = c.Get(ctx, key)
			return err
		})

		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got)

		client.Del(ctx, key)
	})

	t.Run("get non-existent returns ErrNotFound", func(t *testing.T) {
		err := s.WithConn(ctx, func(c store.Conn) error {
			_, err := c.Get(ctx, "url/nonexistent-itest")
			return err
		})

		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("add to set", func(t *testing.T) {
		setKey := "itest-set"

		err := s.WithConn(ctx, func(c store.Conn) error {
			return c.AddToSet(ctx, setKey, "reviews/1")
		})
		require.NoError(t, err)

		ok, err := client.SIsMember(ctx, setKey, "reviews/1").Result()
		require.NoError(t, err)
		assert.True(t, ok)

		client.Del(ctx, setKey)
	})
}
