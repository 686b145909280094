package dto

import (
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/tilequery-overlay/internal/domain"
)

// PermissionResponse - текущее состояние разрешения
type PermissionResponse struct {
	State domain.PermissionState `json:"state"`
}

// LocationResponse - состояние трекера геолокации
type LocationResponse struct {
	Permission domain.PermissionState `json:"permission"`
	Tracking   bool                   `json:"tracking"`
	Fix        *domain.LocationFix    `json:"fix,omitempty"`
}

// FixAcceptedResponse - результат приёма позиции
type FixAcceptedResponse struct {
	Delivered bool                `json:"delivered"`
	Fix       *domain.LocationFix `json:"fix,omitempty"`
}

// TapResponse - выданный запрос Tilequery
type TapResponse struct {
	RequestID  uint64                 `json:"request_id"`
	Origin     domain.Point           `json:"origin"`
	Parameters domain.QueryParameters `json:"parameters"`
}

// OverlayResponse - снимок оверлея для рендерера
type OverlayResponse struct {
	LastAppliedRequestID uint64                     `json:"last_applied_request_id"`
	UpdatedAt            *time.Time                 `json:"updated_at,omitempty"`
	FeatureCount         int                        `json:"feature_count"`
	Features             *geojson.FeatureCollection `json:"features"`
}

// NewOverlayResponse собирает ответ из снимка оверлея
func NewOverlayResponse(o domain.OverlaySource) OverlayResponse {
	resp := OverlayResponse{
		LastAppliedRequestID: o.LastAppliedRequestID,
		FeatureCount:         o.Len(),
		Features:             o.Features,
	}
	if resp.Features == nil {
		resp.Features = geojson.NewFeatureCollection()
	}
	if !o.UpdatedAt.IsZero() {
		updated := o.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// JournalResponse - последние записи журнала запросов
type JournalResponse struct {
	Records []*domain.QueryRecord `json:"records"`
}

// HealthResponse - состояние сервиса и зависимостей
type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
