package usecase_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/usecase"
)

func grantedGate(t *testing.T) *usecase.PermissionGate {
	t.Helper()
	gate := usecase.NewPermissionGate(nil, zap.NewNop())
	gate.RequestPermission()
	gate.OnExternalResult(true)
	require.Equal(t, domain.PermissionGranted, gate.CurrentState())
	return gate
}

func fixAt(lat, lon float64, ts time.Time) domain.LocationFix {
	return domain.LocationFix{Point: domain.Point{Lat: lat, Lon: lon}, Timestamp: ts}
}

type fixRecorder struct {
	mu     sync.Mutex
	events []domain.FixEvent
}

func (r *fixRecorder) observe(e domain.FixEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *fixRecorder) all() []domain.FixEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FixEvent(nil), r.events...)
}

func TestLocationTracker_StartsWhenPermissionGranted(t *testing.T) {
	gate := usecase.NewPermissionGate(nil, zap.NewNop())
	relay := usecase.NewLocationRelay(zap.NewNop())
	tracker := usecase.NewLocationTracker(gate, relay, zap.NewNop())

	assert.False(t, tracker.IsStarted())

	gate.RequestPermission()
	assert.False(t, tracker.IsStarted())

	gate.OnExternalResult(true)
	assert.True(t, tracker.IsStarted())

	now := time.Now()
	assert.True(t, relay.Push(usecase.FixSourceHTTP, fixAt(40, -75, now)))

	fix, ok := tracker.CurrentFix()
	require.True(t, ok)
	assert.Equal(t, domain.Point{Lat: 40, Lon: -75}, fix.Point)
}

func TestLocationTracker_DiscardsOlderOrEqualTimestamps(t *testing.T) {
	gate := grantedGate(t)
	relay := usecase.NewLocationRelay(zap.NewNop())
	tracker := usecase.NewLocationTracker(gate, relay, zap.NewNop())

	rec := &fixRecorder{}
	tracker.Subscribe(rec.observe)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	relay.Push(usecase.FixSourceHTTP, fixAt(1, 1, base))
	relay.Push(usecase.FixSourceHTTP, fixAt(2, 2, base))                   // равный timestamp
	relay.Push(usecase.FixSourceHTTP, fixAt(3, 3, base.Add(-time.Second))) // старее
	relay.Push(usecase.FixSourceHTTP, fixAt(4, 4, base.Add(time.Second)))

	fix, ok := tracker.CurrentFix()
	require.True(t, ok)
	assert.Equal(t, domain.Point{Lat: 4, Lon: 4}, fix.Point)

	events := rec.all()
	require.Len(t, events, 2)
	assert.True(t, events[0].Initial)
	assert.Equal(t, domain.Point{Lat: 1, Lon: 1}, events[0].Fix.Point)
	assert.False(t, events[1].Initial)
	assert.Equal(t, domain.Point{Lat: 4, Lon: 4}, events[1].Fix.Point)
}

func TestLocationTracker_DiscardsInvalidPoint(t *testing.T) {
	gate := grantedGate(t)
	relay := usecase.NewLocationRelay(zap.NewNop())
	tracker := usecase.NewLocationTracker(gate, relay, zap.NewNop())

	relay.Push(usecase.FixSourceHTTP, fixAt(95, 0, time.Now()))

	_, ok := tracker.CurrentFix()
	assert.False(t, ok)
}

func TestLocationTracker_DeniedPermission(t *testing.T) {
	gate := usecase.NewPermissionGate(nil, zap.NewNop())
	relay := usecase.NewLocationRelay(zap.NewNop())
	tracker := usecase.NewLocationTracker(gate, relay, zap.NewNop())

	gate.RequestPermission()
	gate.OnExternalResult(false)
	assert.Equal(t, domain.PermissionDenied, gate.CurrentState())

	tracker.Start()
	assert.False(t, tracker.IsStarted())

	// провайдер продолжает слать позиции, но подписчиков нет
	assert.False(t, relay.Push(usecase.FixSourceHTTP, fixAt(40, -75, time.Now())))

	_, ok := tracker.CurrentFix()
	assert.False(t, ok)
}

func TestLocationTracker_StopIsIdempotent(t *testing.T) {
	gate := grantedGate(t)
	relay := usecase.NewLocationRelay(zap.NewNop())
	tracker := usecase.NewLocationTracker(gate, relay, zap.NewNop())
	require.True(t, tracker.IsStarted())

	tracker.Stop()
	tracker.Stop()
	assert.False(t, tracker.IsStarted())

	assert.False(t, relay.Push(usecase.FixSourceHTTP, fixAt(1, 1, time.Now())))
	_, ok := tracker.CurrentFix()
	assert.False(t, ok)
}

func TestLocationTracker_RevokeClearsFixAndNewSessionIsInitial(t *testing.T) {
	gate := grantedGate(t)
	relay := usecase.NewLocationRelay(zap.NewNop())
	tracker := usecase.NewLocationTracker(gate, relay, zap.NewNop())

	rec := &fixRecorder{}
	tracker.Subscribe(rec.observe)

	base := time.Now()
	relay.Push(usecase.FixSourceHTTP, fixAt(1, 1, base))

	gate.OnRevoked()
	assert.False(t, tracker.IsStarted())
	_, ok := tracker.CurrentFix()
	assert.False(t, ok)

	gate.RequestPermission()
	gate.OnExternalResult(true)
	assert.True(t, tracker.IsStarted())

	relay.Push(usecase.FixSourceHTTP, fixAt(2, 2, base.Add(time.Second)))

	events := rec.all()
	require.Len(t, events, 2)
	assert.True(t, events[0].Initial)
	assert.True(t, events[1].Initial)
}

func TestLocationRelay_Unsubscribe(t *testing.T) {
	relay := usecase.NewLocationRelay(zap.NewNop())

	var got []domain.LocationFix
	cancel, err := relay.Subscribe(func(f domain.LocationFix) { got = append(got, f) })
	require.NoError(t, err)

	assert.True(t, relay.Push(usecase.FixSourceStream, fixAt(1, 1, time.Now())))
	cancel()
	cancel()
	assert.False(t, relay.Push(usecase.FixSourceStream, fixAt(2, 2, time.Now())))
	assert.Len(t, got, 1)
}
