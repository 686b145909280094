package dto

import (
	"time"

	"github.com/tilequery-overlay/internal/domain"
)

// TapRequest - тап пользователя по карте.
// Координаты - указатели, чтобы отличить 0 от отсутствующего поля.
type TapRequest struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" validate:"required,min=-180,max=180"`
}

// Point возвращает точку тапа; вызывать после валидации
func (r TapRequest) Point() domain.Point {
	return domain.Point{Lat: *r.Lat, Lon: *r.Lon}
}

// LocationFixRequest - позиция устройства от внешнего провайдера
type LocationFixRequest struct {
	Lat       *float64   `json:"lat" validate:"required,min=-90,max=90"`
	Lon       *float64   `json:"lon" validate:"required,min=-180,max=180"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ToFix конвертирует запрос в LocationFix; без timestamp используется now
func (r LocationFixRequest) ToFix(now time.Time) domain.LocationFix {
	ts := now
	if r.Timestamp != nil && !r.Timestamp.IsZero() {
		ts = *r.Timestamp
	}
	return domain.LocationFix{
		Point:     domain.Point{Lat: *r.Lat, Lon: *r.Lon},
		Timestamp: ts,
	}
}

// PermissionResultRequest - ответ пользователя на запрос разрешения
type PermissionResultRequest struct {
	Granted *bool `json:"granted" validate:"required"`
}
