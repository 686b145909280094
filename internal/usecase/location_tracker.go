package usecase

import (
	"sync"

	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"go.uber.org/zap"
)

// FixObserver получает уведомление fixUpdated
type FixObserver func(domain.FixEvent)

// LocationTracker хранит лучшую известную позицию устройства.
// Фикс существует только пока разрешение выдано и получена хотя бы одна позиция.
type LocationTracker struct {
	gate     *PermissionGate
	provider repository.LocationProvider
	logger   *zap.Logger

	mu          sync.Mutex
	started     bool
	unsubscribe func()
	fix         domain.LocationFix
	hasFix      bool
	// sessionHasFix сбрасывается при каждом Start: первый фикс сессии помечается Initial
	sessionHasFix bool
	observers     []FixObserver

	notifyMu sync.Mutex
}

// NewLocationTracker создает трекер и подписывает его на изменения разрешения:
// при Granted трекер запускается, при любом другом состоянии останавливается и забывает фикс.
func NewLocationTracker(
	gate *PermissionGate,
	provider repository.LocationProvider,
	logger *zap.Logger,
) *LocationTracker {
	t := &LocationTracker{
		gate:     gate,
		provider: provider,
		logger:   logger,
	}
	gate.Subscribe(t.onPermissionChanged)
	if gate.CurrentState() == domain.PermissionGranted {
		t.Start()
	}
	return t
}

// CurrentFix возвращает текущий фикс; false если позиция неизвестна
func (t *LocationTracker) CurrentFix() (domain.LocationFix, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fix, t.hasFix
}

// IsStarted сообщает, подписан ли трекер на провайдера
func (t *LocationTracker) IsStarted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Subscribe регистрирует наблюдателя fixUpdated
func (t *LocationTracker) Subscribe(observer FixObserver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, observer)
}

// Start подписывается на провайдера геолокации, только если разрешение выдано.
// Иначе no-op с предупреждением в логе.
func (t *LocationTracker) Start() {
	if state := t.gate.CurrentState(); state != domain.PermissionGranted {
		t.logger.Warn("Location tracking not started: permission not granted",
			zap.Stringer("permission", state))
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return
	}

	unsubscribe, err := t.provider.Subscribe(t.onFix)
	if err != nil {
		t.logger.Error("Failed to subscribe to location provider", zap.Error(err))
		return
	}

	t.started = true
	t.unsubscribe = unsubscribe
	t.sessionHasFix = false
	t.logger.Info("Location tracking started")
}

// Stop отписывается от провайдера. Идемпотентен.
func (t *LocationTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	t.started = false
	t.logger.Info("Location tracking stopped")
}

func (t *LocationTracker) onPermissionChanged(state domain.PermissionState) {
	if state == domain.PermissionGranted {
		t.Start()
		return
	}

	t.Stop()

	t.mu.Lock()
	t.fix = domain.LocationFix{}
	t.hasFix = false
	t.mu.Unlock()
}

func (t *LocationTracker) onFix(fix domain.LocationFix) {
	if err := fix.Point.Validate(); err != nil {
		t.logger.Warn("Location fix discarded: invalid point",
			zap.Float64("lat", fix.Point.Lat),
			zap.Float64("lon", fix.Point.Lon))
		return
	}

	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if !t.started || t.gate.CurrentState() != domain.PermissionGranted {
		t.mu.Unlock()
		t.logger.Debug("Location fix discarded: tracking inactive")
		return
	}
	if t.hasFix && !fix.Timestamp.After(t.fix.Timestamp) {
		stored := t.fix.Timestamp
		t.mu.Unlock()
		t.logger.Debug("Location fix discarded: not newer than stored",
			zap.Time("timestamp", fix.Timestamp),
			zap.Time("stored", stored))
		return
	}

	t.fix = fix
	t.hasFix = true
	event := domain.FixEvent{Fix: fix, Initial: !t.sessionHasFix}
	t.sessionHasFix = true
	observers := append([]FixObserver(nil), t.observers...)
	t.mu.Unlock()

	t.logger.Debug("Location fix updated",
		zap.Float64("lat", fix.Point.Lat),
		zap.Float64("lon", fix.Point.Lon),
		zap.Bool("initial", event.Initial))

	for _, observer := range observers {
		observer(event)
	}
}
