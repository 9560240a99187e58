package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	pkgerrors "github.com/pkg/errors"
)

// RedisStore shares cached pages between server processes.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "redis get")
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return pkgerrors.Wrap(s.client.Set(ctx, key, value, ttl).Err(), "redis set")
}

func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return pkgerrors.Wrap(err, "redis scan")
	}
	if len(keys) == 0 {
		return nil
	}
	return pkgerrors.Wrap(s.client.Del(ctx, keys...).Err(), "redis del")
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
