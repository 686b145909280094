package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationFixEvent_ToFix(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stamped := now.Add(-time.Minute)

	tests := []struct {
		name        string
		event       LocationFixEvent
		wantErr     bool
		wantStamp   time.Time
		description string
	}{
		{
			name:        "full event",
			event:       LocationFixEvent{Latitude: floatPtr(41.3851), Longitude: floatPtr(2.1734), Timestamp: &stamped},
			wantStamp:   stamped,
			description: "Should keep the provider timestamp",
		},
		{
			name:        "missing timestamp",
			event:       LocationFixEvent{Latitude: floatPtr(41.3851), Longitude: floatPtr(2.1734)},
			wantStamp:   now,
			description: "Should fall back to the receive time",
		},
		{
			name:        "zero point is valid",
			event:       LocationFixEvent{Latitude: floatPtr(0), Longitude: floatPtr(0)},
			wantStamp:   now,
			description: "Null island is a legal coordinate",
		},
		{
			name:        "missing longitude",
			event:       LocationFixEvent{Latitude: floatPtr(41.3851)},
			wantErr:     true,
			description: "Should reject events without both coordinates",
		},
		{
			name:        "latitude out of range",
			event:       LocationFixEvent{Latitude: floatPtr(91), Longitude: floatPtr(0)},
			wantErr:     true,
			description: "Should reject invalid latitude",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix, err := tt.event.ToFix(now)
			if tt.wantErr {
				require.Error(t, err, tt.description)
				assert.True(t, errors.Is(err, ErrInvalidPoint))
				return
			}
			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.wantStamp, fix.Timestamp, tt.description)
			assert.Equal(t, *tt.event.Latitude, fix.Point.Lat)
			assert.Equal(t, *tt.event.Longitude, fix.Point.Lon)
		})
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
