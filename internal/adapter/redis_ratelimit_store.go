package adapter

import (
	"context"
	"fmt"
	"time"

	"franklin/internal/cache"
	"franklin/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitStore implements domain.RateLimitStore on Redis so that several
// server processes share one usage table. The window is the key's TTL: INCR
// and PTTL run in one MULTI block, a key without expiry gets the window as its
// TTL, and expiry resets the count.
type RedisRateLimitStore struct {
	client *redis.Client
}

// NewRedisRateLimitStore creates a new instance of RedisRateLimitStore.
// It expects a connected *redis.Client.
func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func rateLimitKey(clientKey string) string {
	return cache.GenerateCacheKey("ratelimit", "client", clientKey)
}

// Hit implements domain.RateLimitStore.
func (r *RedisRateLimitStore) Hit(ctx context.Context, clientKey string, window time.Duration, now time.Time) (domain.RateLimitEntry, error) {
	key := rateLimitKey(clientKey)

	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	}); err != nil {
		return domain.RateLimitEntry{}, fmt.Errorf("redis incr %s: %w", key, err)
	}

	count, ttl := incr.Val(), pttl.Val()
	if ttl < 0 {
		// New key, or its expiry was lost. Without a TTL it cannot expire
		// before PEXPIRE lands.
		if err := r.client.PExpire(ctx, key, window).Err(); err != nil {
			return domain.RateLimitEntry{}, fmt.Errorf("redis pexpire %s: %w", key, err)
		}
		ttl = window
	}

	return domain.RateLimitEntry{
		ClientKey:   clientKey,
		WindowStart: now.Add(ttl - window),
		Count:       int(count),
	}, nil
}

// Ping checks the health of the Redis server.
func (r *RedisRateLimitStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ domain.RateLimitStore = (*RedisRateLimitStore)(nil)
