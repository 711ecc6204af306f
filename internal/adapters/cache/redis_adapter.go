package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/facilities-collector/internal/domain/providers"
	redisclient "github.com/zatekoja/facilities-collector/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/facilities-collector/pkg/errors"
)

// RedisAdapter stores cache entries as plain Redis strings
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a Redis backed cache
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{client: client}
}

// Get reads a key. A missing key is a NotFound AppError so callers can
// tell a cold cache from a broken one.
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := a.client.Client().Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("cache key not found: %s", key))
	case err != nil:
		return nil, apperrors.NewExternalError("failed to read cache", err)
	}
	return value, nil
}

// Set writes a key. A zero ttl keeps the entry until it is deleted.
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := a.client.Client().Set(ctx, key, value, ttl).Err(); err != nil {
		return apperrors.NewExternalError("failed to write cache", err)
	}
	return nil
}

// SetNX claims a key that is not set yet
func (a *RedisAdapter) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	claimed, err := a.client.Client().SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, apperrors.NewExternalError("failed to claim cache key", err)
	}
	return claimed, nil
}

// Delete removes keys in one round trip
func (a *RedisAdapter) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := a.client.Client().Del(ctx, keys...).Err(); err != nil {
		return apperrors.NewExternalError("failed to delete cache keys", err)
	}
	return nil
}
