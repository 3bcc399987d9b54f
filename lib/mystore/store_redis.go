package mystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 5 * time.Second
	readTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
)

type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	ConnectAttempts uint
	ConnectDelay    time.Duration
}

// Connect establishes the shared redis connection at process start.
// The initial ping is retried with a fixed delay; when the attempts are
// exhausted the caller is expected to refuse to start serving.
func Connect(c context.Context, cfg RedisConfig) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	_, err := backoff.Retry(c, func() (struct{}, error) {
		return struct{}{}, client.Ping(c).Err()
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(cfg.ConnectDelay)),
		backoff.WithMaxTries(cfg.ConnectAttempts))
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, func() { _ = client.Close() }, nil
}

type RedisStore[T any] struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore stores values as JSON under "<prefix>:<uid>" with the
// given TTL, so abandoned flows age out of the backing store by themselves.
func NewRedisStore[T any](client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisStore[T]) Put(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshalling value for %s: %w", uid, err)
	}

	err = s.client.Set(c, s.key(uid), data, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("error storing %s: %w", uid, err)
	}

	return nil
}

func (s *RedisStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T

	data, err := s.client.Get(c, s.key(uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("error fetching %s: %w", uid, err)
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, false, fmt.Errorf("error unmarshalling value for %s: %w", uid, err)
	}

	return value, true, nil
}

func (s *RedisStore[T]) Delete(c context.Context, uid string) error {
	err := s.client.Del(c, s.key(uid)).Err()
	if err != nil {
		return fmt.Errorf("error deleting %s: %w", uid, err)
	}

	return nil
}

func (s *RedisStore[T]) key(uid string) string {
	return s.keyPrefix + ":" + uid
}
