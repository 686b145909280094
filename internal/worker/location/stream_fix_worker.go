package location

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"github.com/tilequery-overlay/internal/usecase"
	"github.com/tilequery-overlay/internal/worker"
	"go.uber.org/zap"
)

// StreamFixWorker читает позиции устройства из stream:location:fix
type StreamFixWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamConsumer
	sink         FixSink
	consumerName string
	now          func() time.Time
}

// NewStreamFixWorker создает новый StreamFixWorker
func NewStreamFixWorker(
	streamRepo repository.StreamConsumer,
	sink FixSink,
	consumerGroup string,
	logger *zap.Logger,
) *StreamFixWorker {
	hostname, _ := os.Hostname()

	return &StreamFixWorker{
		BaseWorker:   worker.NewBaseWorker("location-fix-stream", consumerGroup, logger),
		streamRepo:   streamRepo,
		sink:         sink,
		consumerName: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		now:          time.Now,
	}
}

// Start запускает воркер
func (w *StreamFixWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting StreamFixWorker",
		zap.String("stream", domain.StreamLocationFix),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamLocationFix, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	runCtx, cancel := w.RunContext(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(runCtx, domain.StreamLocationFix, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				logger.Info("Worker stopped")
				return nil
			}
			w.handleMessage(runCtx, msg)
		case <-runCtx.Done():
			logger.Info("Worker stopped")
			return nil
		}
	}
}

// handleMessage передаёт позицию в relay. Битые сообщения тоже подтверждаются,
// чтобы не застревать в pending.
func (w *StreamFixWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	fix, err := ParseFixEvent([]byte(msg.Data), w.now().UTC())
	if err != nil {
		logger.Warn("Failed to parse location fix, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	} else {
		delivered := w.sink.Push(usecase.FixSourceStream, fix)
		logger.Debug("Location fix received",
			zap.String("message_id", msg.ID),
			zap.Float64("lat", fix.Point.Lat),
			zap.Float64("lon", fix.Point.Lon),
			zap.Bool("delivered", delivered))
	}

	if err := w.streamRepo.AckMessage(ctx, domain.StreamLocationFix, w.ConsumerGroup(), msg.ID); err != nil {
		logger.Error("Failed to ack message", zap.String("message_id", msg.ID), zap.Error(err))
	}
}
