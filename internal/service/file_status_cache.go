package service

import (
	"context"
	"errors"
	"time"

	"franklin/internal/domain"
	"franklin/internal/logger"

	"go.uber.org/zap"
)

// cachedFileGateway is a cache-aside decorator over domain.FileGateway. Only
// ACTIVE handles are cached; every cache failure falls through to the
// provider.
type cachedFileGateway struct {
	domain.FileGateway
	cache domain.FileStatusCache
	ttl   time.Duration
}

// NewCachedFileGateway wraps gateway with a status cache. A nil cache or a
// non-positive ttl returns gateway unchanged.
func NewCachedFileGateway(gateway domain.FileGateway, cache domain.FileStatusCache, ttl time.Duration) domain.FileGateway {
	if gateway == nil || cache == nil || ttl <= 0 {
		return gateway
	}
	return &cachedFileGateway{FileGateway: gateway, cache: cache, ttl: ttl}
}

func (g *cachedFileGateway) Upload(ctx context.Context, fileName, mimeType string, data []byte) (*domain.FileHandle, error) {
	handle, err := g.FileGateway.Upload(ctx, fileName, mimeType, data)
	if err != nil {
		return nil, err
	}
	g.remember(ctx, handle)
	return handle, nil
}

func (g *cachedFileGateway) Status(ctx context.Context, fileID string) (*domain.FileHandle, error) {
	log := logger.FromContext(ctx)

	cached, err := g.cache.Get(ctx, fileID)
	switch {
	case err == nil:
		log.Debug("file status cache hit", zap.String("file_id", fileID))
		return cached, nil
	case errors.Is(err, domain.ErrCacheMiss):
		log.Debug("file status cache miss", zap.String("file_id", fileID))
	default:
		log.Warn("file status cache lookup failed", zap.String("file_id", fileID), zap.Error(err))
	}

	handle, err := g.FileGateway.Status(ctx, fileID)
	if err != nil {
		return nil, err
	}
	g.remember(ctx, handle)
	return handle, nil
}

func (g *cachedFileGateway) Delete(ctx context.Context, fileID string) error {
	if err := g.cache.Invalidate(ctx, fileID); err != nil {
		logger.FromContext(ctx).Warn("file status cache invalidation failed", zap.String("file_id", fileID), zap.Error(err))
	}
	return g.FileGateway.Delete(ctx, fileID)
}

func (g *cachedFileGateway) remember(ctx context.Context, handle *domain.FileHandle) {
	if handle == nil || handle.State != domain.StateActive {
		return
	}
	if err := g.cache.Put(ctx, handle, g.ttl); err != nil {
		logger.FromContext(ctx).Warn("file status cache write failed", zap.String("file_id", handle.ID), zap.Error(err))
	}
}
