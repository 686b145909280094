package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueryOutcome - итог обработки ответа на запрос
type QueryOutcome string

const (
	OutcomeApplied QueryOutcome = "applied"
	OutcomeStale   QueryOutcome = "stale"
	OutcomeFailed  QueryOutcome = "failed"
)

// QueryRecord - запись журнала запросов Tilequery
type QueryRecord struct {
	RequestID    uint64          `json:"request_id"`
	TraceID      uuid.UUID       `json:"trace_id"`
	Origin       Point           `json:"origin"`
	Parameters   QueryParameters `json:"parameters"`
	IssuedAt     time.Time       `json:"issued_at"`
	CompletedAt  time.Time       `json:"completed_at"`
	Outcome      QueryOutcome    `json:"outcome"`
	FeatureCount int             `json:"feature_count"`
	ErrorKind    string          `json:"error_kind,omitempty"`
	StatusCode   int             `json:"status_code,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// NewQueryRecord заполняет запись данными запроса
func NewQueryRecord(req QueryRequest, completedAt time.Time) *QueryRecord {
	return &QueryRecord{
		RequestID:   req.ID,
		TraceID:     req.TraceID,
		Origin:      req.Origin,
		Parameters:  req.Parameters.Clone(),
		IssuedAt:    req.IssuedAt,
		CompletedAt: completedAt,
	}
}

// Duration - время от выдачи запроса до получения ответа
func (r *QueryRecord) Duration() time.Duration {
	return r.CompletedAt.Sub(r.IssuedAt)
}
