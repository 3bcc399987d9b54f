package mystore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newRedisTestStore(t *testing.T) (*RedisStore[testValue], *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore[testValue](client, "test", time.Hour), mr
}

func TestRedisStore(t *testing.T) {
	c := context.TODO()

	t.Run("Put and get", func(t *testing.T) {
		store, _ := newRedisTestStore(t)

		err := store.Put(c, "a", testValue{Name: "first", Count: 1})
		assert.NoError(t, err)

		got, exists, err := store.Get(c, "a")
		assert.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, testValue{Name: "first", Count: 1}, got)
	})

	t.Run("Keys are prefixed", func(t *testing.T) {
		store, mr := newRedisTestStore(t)

		err := store.Put(c, "a", testValue{Name: "first"})
		assert.NoError(t, err)

		assert.True(t, mr.Exists("test:a"))
	})

	t.Run("Get absent", func(t *testing.T) {
		store, _ := newRedisTestStore(t)

		_, exists, err := store.Get(c, "missing")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		store, _ := newRedisTestStore(t)

		err := store.Put(c, "a", testValue{Name: "first"})
		assert.NoError(t, err)

		assert.NoError(t, store.Delete(c, "a"))
		assert.NoError(t, store.Delete(c, "a"))

		_, exists, err := store.Get(c, "a")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Entries expire after ttl", func(t *testing.T) {
		store, mr := newRedisTestStore(t)

		err := store.Put(c, "a", testValue{Name: "first"})
		assert.NoError(t, err)

		mr.FastForward(2 * time.Hour)

		_, exists, err := store.Get(c, "a")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Connect retries until the backend is reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)

		client, cleanup, err := Connect(c, RedisConfig{
			Addr:            mr.Addr(),
			ConnectAttempts: 5,
			ConnectDelay:    10 * time.Millisecond,
		})
		assert.NoError(t, err)
		defer cleanup()

		assert.NoError(t, client.Ping(c).Err())
	})

	t.Run("Connect fails after exhausting attempts", func(t *testing.T) {
		_, _, err := Connect(c, RedisConfig{
			Addr:            "127.0.0.1:1", // nothing listens here
			ConnectAttempts: 2,
			ConnectDelay:    10 * time.Millisecond,
		})
		assert.Error(t, err)
	})
}
