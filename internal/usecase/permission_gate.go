package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"github.com/tilequery-overlay/internal/pkg/metrics"
	"go.uber.org/zap"
)

const promptTimeout = 5 * time.Second

// PermissionObserver получает новое состояние после каждого перехода
type PermissionObserver func(domain.PermissionState)

// PermissionGate - конечный автомат разрешения на геолокацию.
//
//	Unknown --request--> Requested --grant--> Granted
//	Requested --deny--> Denied --request--> Requested
//	Granted --revoke--> Denied
//
// Методы никогда не возвращают ошибок, только меняют и сообщают состояние.
type PermissionGate struct {
	prompter repository.PermissionPrompter
	logger   *zap.Logger

	mu        sync.Mutex
	state     domain.PermissionState
	observers []PermissionObserver

	// notifyMu упорядочивает доставку уведомлений в порядке переходов
	notifyMu sync.Mutex
	// prompts отслеживает фоновые вызовы prompter
	prompts sync.WaitGroup
}

// NewPermissionGate создает PermissionGate в состоянии Unknown.
// prompter может быть nil: тогда результат приходит только через OnExternalResult.
func NewPermissionGate(prompter repository.PermissionPrompter, logger *zap.Logger) *PermissionGate {
	return &PermissionGate{
		prompter: prompter,
		logger:   logger,
		state:    domain.PermissionUnknown,
	}
}

// CurrentState возвращает текущее состояние
func (g *PermissionGate) CurrentState() domain.PermissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Subscribe регистрирует наблюдателя. Наблюдатель не должен синхронно
// вызывать методы перехода гейта.
func (g *PermissionGate) Subscribe(observer PermissionObserver) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, observer)
}

// RequestPermission переводит Unknown/Denied в Requested и показывает запрос разрешения.
// В состояниях Granted и Requested ничего не делает.
func (g *PermissionGate) RequestPermission() {
	changed := g.transition(func(s domain.PermissionState) (domain.PermissionState, bool) {
		switch s {
		case domain.PermissionUnknown, domain.PermissionDenied:
			return domain.PermissionRequested, true
		}
		return s, false
	})
	if !changed {
		g.logger.Debug("Permission request ignored", zap.Stringer("state", g.CurrentState()))
		return
	}
	if g.prompter == nil {
		return
	}

	event := domain.PermissionPromptEvent{
		PromptID:    uuid.New(),
		RequestedAt: time.Now().UTC(),
	}

	g.prompts.Add(1)
	go func() {
		defer g.prompts.Done()

		ctx, cancel := context.WithTimeout(context.Background(), promptTimeout)
		defer cancel()

		if err := g.prompter.Prompt(ctx, event); err != nil {
			// без показанного запроса ответа не будет: считаем его отказом,
			// чтобы гейт можно было запросить повторно
			g.logger.Error("Failed to show permission prompt",
				zap.String("prompt_id", event.PromptID.String()),
				zap.Error(err))
			g.OnExternalResult(false)
			return
		}
		g.logger.Info("Permission prompt sent", zap.String("prompt_id", event.PromptID.String()))
	}()
}

// OnExternalResult применяет ответ пользователя. Вне состояния Requested - no-op.
func (g *PermissionGate) OnExternalResult(granted bool) {
	g.transition(func(s domain.PermissionState) (domain.PermissionState, bool) {
		if s != domain.PermissionRequested {
			return s, false
		}
		if granted {
			return domain.PermissionGranted, true
		}
		return domain.PermissionDenied, true
	})
}

// OnRevoked синхронизирует отзыв разрешения на уровне ОС: Granted -> Denied
func (g *PermissionGate) OnRevoked() {
	g.transition(func(s domain.PermissionState) (domain.PermissionState, bool) {
		if s != domain.PermissionGranted {
			return s, false
		}
		return domain.PermissionDenied, true
	})
}

// WaitPrompts ждёт завершения отправленных запросов разрешения
func (g *PermissionGate) WaitPrompts() {
	g.prompts.Wait()
}

func (g *PermissionGate) transition(next func(domain.PermissionState) (domain.PermissionState, bool)) bool {
	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()

	g.mu.Lock()
	from := g.state
	to, ok := next(from)
	if !ok {
		g.mu.Unlock()
		return false
	}
	g.state = to
	observers := append([]PermissionObserver(nil), g.observers...)
	g.mu.Unlock()

	metrics.PermissionTransitions.WithLabelValues(to.String()).Inc()
	g.logger.Info("Permission state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to))

	for _, observer := range observers {
		observer(to)
	}
	return true
}
