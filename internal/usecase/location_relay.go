package usecase

import (
	"sync"

	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"github.com/tilequery-overlay/internal/pkg/metrics"
	"go.uber.org/zap"
)

// Источники геопозиций
const (
	FixSourceHTTP   = "http"
	FixSourceStream = "stream"
	FixSourceMQTT   = "mqtt"
)

var _ repository.LocationProvider = (*LocationRelay)(nil)

// LocationRelay - провайдер геолокации, объединяющий позиции из HTTP, Redis Streams и MQTT
type LocationRelay struct {
	logger *zap.Logger

	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]func(domain.LocationFix)
}

// NewLocationRelay создает LocationRelay
func NewLocationRelay(logger *zap.Logger) *LocationRelay {
	return &LocationRelay{
		logger:   logger,
		handlers: make(map[uint64]func(domain.LocationFix)),
	}
}

// Subscribe регистрирует обработчик позиций
func (r *LocationRelay) Subscribe(handler func(domain.LocationFix)) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.handlers[id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.handlers, id)
			r.mu.Unlock()
		})
	}, nil
}

// Push передаёт позицию подписчикам. Возвращает false, если подписчиков нет.
func (r *LocationRelay) Push(source string, fix domain.LocationFix) bool {
	r.mu.RLock()
	handlers := make([]func(domain.LocationFix), 0, len(r.handlers))
	for _, h := range r.handlers {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	if len(handlers) == 0 {
		metrics.LocationFixes.WithLabelValues(source, "dropped").Inc()
		r.logger.Debug("Location fix dropped: no subscribers", zap.String("source", source))
		return false
	}

	metrics.LocationFixes.WithLabelValues(source, "delivered").Inc()
	for _, h := range handlers {
		h(fix)
	}
	return true
}
