package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamLocationFix      = "stream:location:fix"
	StreamPermissionPrompt = "stream:permission:prompt"
	StreamOverlayUpdated   = "stream:overlay:updated"
)

// LocationFixEvent - входящее событие от провайдера геолокации
type LocationFixEvent struct {
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Source    string     `json:"source,omitempty"`
}

// ToFix конвертирует событие в LocationFix.
// Событие без метки времени получает время приёма now.
func (e *LocationFixEvent) ToFix(now time.Time) (LocationFix, error) {
	if e.Latitude == nil || e.Longitude == nil {
		return LocationFix{}, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidPoint)
	}
	point := Point{Lat: *e.Latitude, Lon: *e.Longitude}
	if err := point.Validate(); err != nil {
		return LocationFix{}, err
	}
	ts := now
	if e.Timestamp != nil && !e.Timestamp.IsZero() {
		ts = *e.Timestamp
	}
	return LocationFix{Point: point, Timestamp: ts}, nil
}

// PermissionPromptEvent - запрос на показ системного диалога разрешения
type PermissionPromptEvent struct {
	PromptID    uuid.UUID `json:"prompt_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// OverlayUpdatedEvent - уведомление рендерера об обновлении оверлея
type OverlayUpdatedEvent struct {
	RequestID    uint64    `json:"request_id"`
	FeatureCount int       `json:"feature_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
