package repository

import (
	"context"

	"github.com/tilequery-overlay/internal/domain"
)

// PermissionPrompter передаёт запрос разрешения внешнему агенту (пользователю / ОС).
// Результат приходит позже через PermissionGate.OnExternalResult.
type PermissionPrompter interface {
	Prompt(ctx context.Context, event domain.PermissionPromptEvent) error
}

// LocationProvider - источник сырых геопозиций устройства
type LocationProvider interface {
	// Subscribe регистрирует обработчик; возвращённая функция отменяет подписку
	Subscribe(handler func(domain.LocationFix)) (cancel func(), err error)
}
