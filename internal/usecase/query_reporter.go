package usecase

import (
	"context"
	"time"

	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"github.com/tilequery-overlay/internal/pkg/errors"
	"github.com/tilequery-overlay/internal/pkg/metrics"
	"go.uber.org/zap"
)

const (
	journalWriteTimeout = 5 * time.Second
	// DefaultJournalLimit - размер выборки журнала по умолчанию
	DefaultJournalLimit = 20
	// MaxJournalLimit - верхняя граница выборки журнала
	MaxJournalLimit = 200
)

// QueryReporter получает итог каждого запроса Tilequery
type QueryReporter interface {
	Report(record *domain.QueryRecord)
}

// JournalUseCase отдаёт историю запросов
type JournalUseCase interface {
	RecentQueries(ctx context.Context, limit int) ([]*domain.QueryRecord, error)
}

var (
	_ QueryReporter  = (*ObservabilityReporter)(nil)
	_ JournalUseCase = (*ObservabilityReporter)(nil)
)

// ObservabilityReporter пишет итоги запросов в лог, метрики Prometheus и,
// если настроен, в журнал Postgres
type ObservabilityReporter struct {
	journal repository.QueryJournalRepository
	logger  *zap.Logger
}

// NewObservabilityReporter создает репортер; journal может быть nil
func NewObservabilityReporter(journal repository.QueryJournalRepository, logger *zap.Logger) *ObservabilityReporter {
	return &ObservabilityReporter{
		journal: journal,
		logger:  logger,
	}
}

// Report фиксирует итог запроса
func (r *ObservabilityReporter) Report(record *domain.QueryRecord) {
	fields := []zap.Field{
		zap.Uint64("request_id", record.RequestID),
		zap.String("trace_id", record.TraceID.String()),
		zap.Float64("lat", record.Origin.Lat),
		zap.Float64("lon", record.Origin.Lon),
		zap.Duration("duration", record.Duration()),
	}

	metrics.TilequeryRequests.WithLabelValues(string(record.Outcome)).Inc()
	metrics.TilequeryDuration.Observe(record.Duration().Seconds())

	switch record.Outcome {
	case domain.OutcomeApplied:
		r.logger.Info("Overlay updated", append(fields, zap.Int("features", record.FeatureCount))...)
	case domain.OutcomeStale:
		r.logger.Debug("Stale response discarded", append(fields, zap.Int("features", record.FeatureCount))...)
	case domain.OutcomeFailed:
		metrics.TilequeryErrors.WithLabelValues(record.ErrorKind).Inc()
		r.logger.Error("Tilequery request failed", append(fields,
			zap.String("kind", record.ErrorKind),
			zap.Int("status_code", record.StatusCode),
			zap.String("error", record.Error))...)
	}

	if r.journal == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()

	if err := r.journal.Record(ctx, record); err != nil {
		r.logger.Warn("Failed to write query journal",
			zap.Uint64("request_id", record.RequestID),
			zap.Error(err))
	}
}

// RecentQueries возвращает последние записи журнала, новые первыми
func (r *ObservabilityReporter) RecentQueries(ctx context.Context, limit int) ([]*domain.QueryRecord, error) {
	if r.journal == nil {
		return nil, errors.ErrJournalDisabled
	}
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	if limit > MaxJournalLimit {
		limit = MaxJournalLimit
	}
	return r.journal.ListRecent(ctx, limit)
}
