package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront:session:%s:%s"

// RedisStorage namespaces every key under one session so the HTTP service can
// keep many browser sessions in a shared Redis.
type RedisStorage struct {
	client    redis.Cmdable
	namespace string
	ttl       time.Duration
}

var _ Storage = (*RedisStorage)(nil)

func NewRedisStorage(client redis.Cmdable, namespace string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStorage) key(k string) string {
	return fmt.Sprintf(keyPrefix, s.namespace, k)
}

func (s *RedisStorage) Get(c context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(c, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed getting session key=%s with error=%w", key, err)
	}
	return v, true, nil
}

func (s *RedisStorage) Set(c context.Context, key, value string) error {
	if err := s.client.Set(c, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed setting session key=%s with error=%w", key, err)
	}
	return nil
}

func (s *RedisStorage) Delete(c context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(c, full...).Err(); err != nil {
		return fmt.Errorf("failed deleting session keys with error=%w", err)
	}
	return nil
}
