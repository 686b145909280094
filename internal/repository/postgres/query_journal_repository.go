package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"go.uber.org/zap"
)

var _ repository.QueryJournalRepository = (*queryJournalRepository)(nil)

type queryJournalRepository struct {
	db *DB
}

// NewQueryJournalRepository создает репозиторий журнала запросов Tilequery
func NewQueryJournalRepository(db *DB) repository.QueryJournalRepository {
	return &queryJournalRepository{db: db}
}

type journalRow struct {
	RequestID    int64     `db:"request_id"`
	TraceID      uuid.UUID `db:"trace_id"`
	OriginLat    float64   `db:"origin_lat"`
	OriginLon    float64   `db:"origin_lon"`
	RadiusMeters int64     `db:"radius_meters"`
	ResultLimit  int64     `db:"result_limit"`
	Geometry     string    `db:"geometry"`
	Layers       string    `db:"layers"`
	Dedupe       bool      `db:"dedupe"`
	IssuedAt     time.Time `db:"issued_at"`
	CompletedAt  time.Time `db:"completed_at"`
	Outcome      string    `db:"outcome"`
	FeatureCount int       `db:"feature_count"`
	ErrorKind    string    `db:"error_kind"`
	StatusCode   int       `db:"status_code"`
	Error        string    `db:"error"`
}

func (r *queryJournalRepository) Record(ctx context.Context, record *domain.QueryRecord) error {
	row := journalRow{
		RequestID:    int64(record.RequestID),
		TraceID:      record.TraceID,
		OriginLat:    record.Origin.Lat,
		OriginLon:    record.Origin.Lon,
		RadiusMeters: int64(record.Parameters.RadiusMeters),
		ResultLimit:  int64(record.Parameters.Limit),
		Geometry:     record.Parameters.Geometry.String(),
		Layers:       strings.Join(record.Parameters.Layers, ","),
		Dedupe:       record.Parameters.Dedupe,
		IssuedAt:     record.IssuedAt,
		CompletedAt:  record.CompletedAt,
		Outcome:      string(record.Outcome),
		FeatureCount: record.FeatureCount,
		ErrorKind:    record.ErrorKind,
		StatusCode:   record.StatusCode,
		Error:        record.Error,
	}

	query := `
		INSERT INTO tilequery_journal (
			request_id, trace_id, origin_lat, origin_lon,
			radius_meters, result_limit, geometry, layers, dedupe,
			issued_at, completed_at, outcome, feature_count,
			error_kind, status_code, error
		) VALUES (
			:request_id, :trace_id, :origin_lat, :origin_lon,
			:radius_meters, :result_limit, :geometry, :layers, :dedupe,
			:issued_at, :completed_at, :outcome, :feature_count,
			:error_kind, :status_code, :error
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.db.logger.Error("Failed to insert journal record",
			zap.Uint64("request_id", record.RequestID),
			zap.Error(err))
		return fmt.Errorf("failed to insert journal record: %w", err)
	}
	return nil
}

func (r *queryJournalRepository) ListRecent(ctx context.Context, limit int) ([]*domain.QueryRecord, error) {
	query := `
		SELECT request_id, trace_id, origin_lat, origin_lon,
		       radius_meters, result_limit, geometry, layers, dedupe,
		       issued_at, completed_at, outcome, feature_count,
		       error_kind, status_code, error
		FROM tilequery_journal
		ORDER BY completed_at DESC, id DESC
		LIMIT $1
	`

	var rows []journalRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		r.db.logger.Error("Failed to list journal records", zap.Error(err))
		return nil, fmt.Errorf("failed to list journal records: %w", err)
	}

	records := make([]*domain.QueryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toDomain())
	}
	return records, nil
}

func (row journalRow) toDomain() *domain.QueryRecord {
	// неизвестное значение в базе читается как GeometryAny
	geometry, _ := domain.ParseGeometryFilter(row.Geometry)

	var layers []string
	if row.Layers != "" {
		layers = strings.Split(row.Layers, ",")
	}

	return &domain.QueryRecord{
		RequestID: uint64(row.RequestID),
		TraceID:   row.TraceID,
		Origin:    domain.Point{Lat: row.OriginLat, Lon: row.OriginLon},
		Parameters: domain.QueryParameters{
			RadiusMeters: uint(row.RadiusMeters),
			Limit:        uint(row.ResultLimit),
			Geometry:     geometry,
			Layers:       layers,
			Dedupe:       row.Dedupe,
		},
		IssuedAt:     row.IssuedAt,
		CompletedAt:  row.CompletedAt,
		Outcome:      domain.QueryOutcome(row.Outcome),
		FeatureCount: row.FeatureCount,
		ErrorKind:    row.ErrorKind,
		StatusCode:   row.StatusCode,
		Error:        row.Error,
	}
}
