package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// QueryRequest - один запрос к пространственному индексу, созданный по триггеру.
// После создания не изменяется.
type QueryRequest struct {
	ID         uint64
	TraceID    uuid.UUID
	Origin     Point
	Parameters QueryParameters
	IssuedAt   time.Time
}

// OverlaySource - единственный источник данных оверлея, который читает рендерер
type OverlaySource struct {
	Features             *geojson.FeatureCollection `json:"features"`
	LastAppliedRequestID uint64                     `json:"last_applied_request_id"`
	UpdatedAt            time.Time                  `json:"updated_at"`
}

// NewOverlaySource возвращает пустой оверлей
func NewOverlaySource() OverlaySource {
	return OverlaySource{Features: geojson.NewFeatureCollection()}
}

// Len возвращает количество фич в оверлее
func (o OverlaySource) Len() int {
	if o.Features == nil {
		return 0
	}
	return len(o.Features.Features)
}

// Clone возвращает снимок оверлея. Сами фичи неизменяемы и разделяются.
func (o OverlaySource) Clone() OverlaySource {
	clone := o
	if o.Features == nil {
		clone.Features = geojson.NewFeatureCollection()
		return clone
	}
	fc := *o.Features
	fc.Features = append(make([]*geojson.Feature, 0, len(o.Features.Features)), o.Features.Features...)
	clone.Features = &fc
	return clone
}
