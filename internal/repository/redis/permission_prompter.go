package redis

import (
	"context"
	"fmt"

	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/domain/repository"
	"go.uber.org/zap"
)

type permissionPrompter struct {
	streams repository.StreamPublisher
	logger  *zap.Logger
}

// NewPermissionPrompter публикует запросы разрешения в stream:permission:prompt.
// Клиент показывает системный диалог и возвращает ответ через HTTP API.
func NewPermissionPrompter(streams repository.StreamPublisher, logger *zap.Logger) repository.PermissionPrompter {
	return &permissionPrompter{
		streams: streams,
		logger:  logger,
	}
}

func (p *permissionPrompter) Prompt(ctx context.Context, event domain.PermissionPromptEvent) error {
	if err := p.streams.PublishToStream(ctx, domain.StreamPermissionPrompt, event); err != nil {
		return fmt.Errorf("failed to publish permission prompt: %w", err)
	}
	p.logger.Debug("Permission prompt published",
		zap.String("prompt_id", event.PromptID.String()))
	return nil
}
