package repository

import (
	"context"

	"github.com/tilequery-overlay/internal/domain"
)

// StreamConsumer читает стрим через consumer group (stream:location:fix)
type StreamConsumer interface {
	// CreateConsumerGroup создаёт группу; существующая группа - не ошибка
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeStream отдаёт сообщения до отмены ctx, затем закрывает канал
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	AckMessage(ctx context.Context, stream, group, messageID string) error
}

// StreamPublisher публикует события как JSON в поле "data"
// (stream:permission:prompt, stream:overlay:updated)
type StreamPublisher interface {
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}

// StreamRepository - Redis Streams целиком
type StreamRepository interface {
	StreamConsumer
	StreamPublisher
}
