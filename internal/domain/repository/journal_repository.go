package repository

import (
	"context"

	"github.com/tilequery-overlay/internal/domain"
)

// QueryJournalRepository хранит историю завершённых запросов Tilequery
type QueryJournalRepository interface {
	Record(ctx context.Context, record *domain.QueryRecord) error
	ListRecent(ctx context.Context, limit int) ([]*domain.QueryRecord, error)
}
