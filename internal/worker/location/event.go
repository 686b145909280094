package location

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tilequery-overlay/internal/domain"
)

// FixSink принимает позиции устройства (usecase.LocationRelay)
type FixSink interface {
	Push(source string, fix domain.LocationFix) bool
}

// ParseFixEvent разбирает JSON LocationFixEvent; позиция без времени получает now
func ParseFixEvent(data []byte, now time.Time) (domain.LocationFix, error) {
	if len(data) == 0 {
		return domain.LocationFix{}, fmt.Errorf("empty payload")
	}

	var event domain.LocationFixEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.LocationFix{}, fmt.Errorf("failed to unmarshal location fix: %w", err)
	}

	return event.ToFix(now)
}
