package domain

import "time"

// LocationFix - известная позиция устройства
type LocationFix struct {
	Point     Point     `json:"point"`
	Timestamp time.Time `json:"timestamp"`
}

// FixEvent - уведомление fixUpdated от LocationTracker.
// Initial выставлен для первого фикса в сессии отслеживания.
type FixEvent struct {
	Fix     LocationFix
	Initial bool
}
