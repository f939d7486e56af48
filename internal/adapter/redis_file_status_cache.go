package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"franklin/internal/cache"
	"franklin/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisFileStatusCache implements domain.FileStatusCache with one JSON string
// key per file.
type RedisFileStatusCache struct {
	client *redis.Client
}

func NewRedisFileStatusCache(client *redis.Client) *RedisFileStatusCache {
	return &RedisFileStatusCache{client: client}
}

func fileStatusKey(fileID string) string {
	return cache.GenerateCacheKey("file", "status", domain.ShortFileID(fileID))
}

// Get translates redis.Nil to domain.ErrCacheMiss.
func (r *RedisFileStatusCache) Get(ctx context.Context, fileID string) (*domain.FileHandle, error) {
	val, err := r.client.Get(ctx, fileStatusKey(fileID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}

	var handle domain.FileHandle
	if err := json.Unmarshal([]byte(val), &handle); err != nil {
		return nil, fmt.Errorf("decode cached file status: %w", err)
	}
	return &handle, nil
}

func (r *RedisFileStatusCache) Put(ctx context.Context, handle *domain.FileHandle, ttl time.Duration) error {
	b, err := json.Marshal(handle)
	if err != nil {
		return fmt.Errorf("encode file status: %w", err)
	}
	return r.client.Set(ctx, fileStatusKey(handle.ID), b, ttl).Err()
}

// Invalidate does not fail when the key is absent.
func (r *RedisFileStatusCache) Invalidate(ctx context.Context, fileID string) error {
	return r.client.Del(ctx, fileStatusKey(fileID)).Err()
}
