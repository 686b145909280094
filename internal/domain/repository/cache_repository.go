package repository

import (
	"context"
	"time"

	"github.com/tilequery-overlay/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetOverlay сохраняет снимок оверлея для внешних читателей
	SetOverlay(ctx context.Context, overlay *domain.OverlaySource, ttl time.Duration) error
}
