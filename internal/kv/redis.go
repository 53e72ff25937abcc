package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in Redis under a per-namespace key prefix
type RedisStore struct {
	BaseBackend
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and scopes keys to namespace
func NewRedisStore(ctx context.Context, address, password string, db int, namespace string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisStore(client, namespace), nil
}

func newRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{
		BaseBackend: BaseBackend{backendType: "redis"},
		client:      client,
		prefix:      RedisPrefix(namespace),
	}
}

// RedisPrefix returns the key prefix used for namespace
func RedisPrefix(namespace string) string {
	if namespace == "" {
		namespace = "default"
	}
	return fmt.Sprintf("emporium:%s:", strings.ReplaceAll(namespace, ":", "_"))
}

// Load fetches key from Redis
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

// Save writes key to Redis without expiry
func (s *RedisStore) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Purge removes every key under the namespace prefix
func (s *RedisStore) Purge(ctx context.Context) (int, error) {
	pattern := s.prefix + "*"
	var cursor uint64
	var deleted int

	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	slog.Debug("redis state namespace purged", "prefix", s.prefix, "keys_deleted", deleted)
	return deleted, nil
}

// HealthCheck verifies Redis connectivity
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
