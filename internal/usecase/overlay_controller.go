package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"github.com/tilequery-overlay/internal/pkg/metrics"
	"go.uber.org/zap"
)

// OverlayObserver получает снимок оверлея после каждого применённого ответа
type OverlayObserver func(domain.OverlaySource)

// OverlayController выдаёт запросы Tilequery по триггерам и сводит ответы
// в единственный OverlaySource по правилу last-writer-wins-by-id.
type OverlayController struct {
	tilequery    repository.TilequeryRepository
	params       domain.QueryParameters
	reporter     QueryReporter
	logger       *zap.Logger
	queryTimeout time.Duration

	seq atomic.Uint64

	baseCtx context.Context
	cancel  context.CancelFunc

	stateMu  sync.Mutex
	stopped  bool
	inflight sync.WaitGroup

	// notifyMu делает применение и доставку наблюдателям одной критической секцией
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	overlay   domain.OverlaySource
	observers []OverlayObserver
}

// NewOverlayController создает контроллер с пустым оверлеем
func NewOverlayController(
	tilequery repository.TilequeryRepository,
	params domain.QueryParameters,
	reporter QueryReporter,
	queryTimeout time.Duration,
	logger *zap.Logger,
) *OverlayController {
	ctx, cancel := context.WithCancel(context.Background())
	return &OverlayController{
		tilequery:    tilequery,
		params:       params.Clone(),
		reporter:     reporter,
		logger:       logger,
		queryTimeout: queryTimeout,
		baseCtx:      ctx,
		cancel:       cancel,
		overlay:      domain.NewOverlaySource(),
	}
}

// OnTrigger выдаёт новый запрос для точки (начальный фикс или тап) и сразу возвращает его id.
// Одинаковые точки не дедуплицируются.
func (c *OverlayController) OnTrigger(point domain.Point) (uint64, error) {
	if err := point.Validate(); err != nil {
		return 0, err
	}

	c.stateMu.Lock()
	if c.stopped {
		c.stateMu.Unlock()
		return 0, domain.ErrControllerStopped
	}
	req := domain.QueryRequest{
		ID:         c.seq.Add(1),
		TraceID:    uuid.New(),
		Origin:     point,
		Parameters: c.params.Clone(),
		IssuedAt:   time.Now().UTC(),
	}
	c.inflight.Add(1)
	c.stateMu.Unlock()

	c.logger.Debug("Tilequery request issued",
		zap.Uint64("request_id", req.ID),
		zap.String("trace_id", req.TraceID.String()),
		zap.Float64("lat", point.Lat),
		zap.Float64("lon", point.Lon))

	go c.run(req)

	return req.ID, nil
}

// OnFix - наблюдатель LocationTracker: запрос выдаётся для первого фикса сессии
func (c *OverlayController) OnFix(event domain.FixEvent) {
	if !event.Initial {
		return
	}
	if _, err := c.OnTrigger(event.Fix.Point); err != nil {
		c.logger.Warn("Initial fix trigger rejected", zap.Error(err))
	}
}

// CurrentOverlay возвращает снимок оверлея для рендерера
func (c *OverlayController) CurrentOverlay() domain.OverlaySource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overlay.Clone()
}

// Parameters возвращает параметры, с которыми выдаются запросы
func (c *OverlayController) Parameters() domain.QueryParameters {
	return c.params.Clone()
}

// Subscribe регистрирует наблюдателя. Наблюдатели вызываются в порядке применения ответов
// и не должны блокироваться.
func (c *OverlayController) Subscribe(observer OverlayObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, observer)
}

// Wait ждёт завершения всех выданных запросов
func (c *OverlayController) Wait() {
	c.inflight.Wait()
}

// Shutdown перестаёт принимать триггеры, отменяет выполняющиеся запросы и ждёт их завершения
func (c *OverlayController) Shutdown(ctx context.Context) error {
	c.stateMu.Lock()
	c.stopped = true
	c.stateMu.Unlock()

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Overlay controller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *OverlayController) run(req domain.QueryRequest) {
	defer c.inflight.Done()

	ctx, cancel := context.WithTimeout(c.baseCtx, c.queryTimeout)
	fc, err := c.tilequery.Query(ctx, req.Origin, req.Parameters)
	cancel()

	record := domain.NewQueryRecord(req, time.Now().UTC())

	if err != nil {
		record.Outcome = domain.OutcomeFailed
		record.ErrorKind = domain.ErrorKindOf(err)
		record.StatusCode = domain.StatusCodeOf(err)
		record.Error = err.Error()
		c.reporter.Report(record)
		return
	}

	record.FeatureCount = len(fc.Features)
	if c.apply(req, fc) {
		record.Outcome = domain.OutcomeApplied
	} else {
		record.Outcome = domain.OutcomeStale
		record.Error = domain.ErrStaleResponse.Error()
	}
	c.reporter.Report(record)
}

// apply заменяет фичи оверлея, только если запрос новее последнего применённого
func (c *OverlayController) apply(req domain.QueryRequest, fc *geojson.FeatureCollection) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if req.ID <= c.overlay.LastAppliedRequestID {
		c.mu.Unlock()
		return false
	}
	c.overlay = domain.OverlaySource{
		Features:             fc,
		LastAppliedRequestID: req.ID,
		UpdatedAt:            time.Now().UTC(),
	}
	snapshot := c.overlay.Clone()
	observers := append([]OverlayObserver(nil), c.observers...)
	c.mu.Unlock()

	metrics.OverlayFeatures.Set(float64(snapshot.Len()))
	metrics.OverlayLastAppliedRequest.Set(float64(req.ID))

	for _, observer := range observers {
		observer(snapshot)
	}
	return true
}
