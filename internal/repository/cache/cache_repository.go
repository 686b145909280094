package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"go.uber.org/zap"
)

// OverlayKey - ключ последнего опубликованного снимка оверлея
const OverlayKey = "overlay:current"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return newCacheRepository(redis.Client(), redis.logger)
}

func newCacheRepository(client *redis.Client, logger *zap.Logger) *cacheRepository {
	return &cacheRepository{
		client: client,
		logger: logger,
	}
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) SetOverlay(ctx context.Context, overlay *domain.OverlaySource, ttl time.Duration) error {
	data, err := json.Marshal(overlay)
	if err != nil {
		return fmt.Errorf("failed to marshal overlay: %w", err)
	}
	return r.Set(ctx, OverlayKey, data, ttl)
}
