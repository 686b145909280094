package overlay

import (
	"context"
	"sync"
	"time"

	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"github.com/tilequery-overlay/internal/worker"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// PublishWorker публикует применённые снимки оверлея в Redis:
// ключ overlay:current и событие в stream:overlay:updated.
// Снимки, пришедшие во время публикации, схлопываются до последнего.
type PublishWorker struct {
	*worker.BaseWorker
	cache   repository.CacheRepository
	streams repository.StreamPublisher
	ttl     time.Duration

	mu      sync.Mutex
	pending *domain.OverlaySource
	signal  chan struct{}
}

// NewPublishWorker создает новый PublishWorker
func NewPublishWorker(
	cache repository.CacheRepository,
	streams repository.StreamPublisher,
	ttl time.Duration,
	logger *zap.Logger,
) *PublishWorker {
	return &PublishWorker{
		BaseWorker: worker.NewBaseWorker("overlay-publisher", "", logger),
		cache:      cache,
		streams:    streams,
		ttl:        ttl,
		signal:     make(chan struct{}, 1),
	}
}

// Observe - наблюдатель OverlayController; не блокируется
func (w *PublishWorker) Observe(snapshot domain.OverlaySource) {
	w.mu.Lock()
	if w.pending == nil || snapshot.LastAppliedRequestID > w.pending.LastAppliedRequestID {
		w.pending = &snapshot
	}
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Start запускает воркер
func (w *PublishWorker) Start(ctx context.Context) error {
	w.Logger().Info("Starting PublishWorker", zap.Duration("ttl", w.ttl))

	for {
		select {
		case <-w.signal:
			w.flush(ctx)
		case <-w.StopChan():
			// последний снимок публикуется и при остановке
			w.flush(context.Background())
			w.Logger().Info("Worker stopped")
			return nil
		case <-ctx.Done():
			w.Logger().Info("Context cancelled")
			return ctx.Err()
		}
	}
}

func (w *PublishWorker) flush(parent context.Context) {
	w.mu.Lock()
	snapshot := w.pending
	w.pending = nil
	w.mu.Unlock()

	if snapshot == nil {
		return
	}

	ctx, cancel := context.WithTimeout(parent, publishTimeout)
	defer cancel()

	logger := w.Logger().With(zap.Uint64("request_id", snapshot.LastAppliedRequestID))

	if err := w.cache.SetOverlay(ctx, snapshot, w.ttl); err != nil {
		logger.Error("Failed to store overlay snapshot", zap.Error(err))
	}

	event := domain.OverlayUpdatedEvent{
		RequestID:    snapshot.LastAppliedRequestID,
		FeatureCount: snapshot.Len(),
		UpdatedAt:    snapshot.UpdatedAt,
	}
	if err := w.streams.PublishToStream(ctx, domain.StreamOverlayUpdated, event); err != nil {
		logger.Error("Failed to publish overlay update", zap.Error(err))
		return
	}

	logger.Debug("Overlay snapshot published", zap.Int("features", event.FeatureCount))
}
