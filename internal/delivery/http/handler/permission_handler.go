package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/pkg/errors"
	"github.com/tilequery-overlay/internal/pkg/utils"
	"github.com/tilequery-overlay/internal/pkg/validator"
	"github.com/tilequery-overlay/internal/usecase/dto"
	"go.uber.org/zap"
)

// PermissionGate - операции гейта разрешений, доступные по HTTP
type PermissionGate interface {
	CurrentState() domain.PermissionState
	RequestPermission()
	OnExternalResult(granted bool)
	OnRevoked()
}

// PermissionHandler - обработчик состояния разрешения на геолокацию
type PermissionHandler struct {
	gate   PermissionGate
	logger *zap.Logger
}

// NewPermissionHandler - создание нового PermissionHandler
func NewPermissionHandler(gate PermissionGate, logger *zap.Logger) *PermissionHandler {
	return &PermissionHandler{
		gate:   gate,
		logger: logger,
	}
}

// GetState godoc
// @Summary Состояние разрешения
// @Description Возвращает текущее состояние доступа к геолокации: unknown, requested, granted или denied
// @Tags Permission
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.PermissionResponse}
// @Router /api/v1/permission [get]
func (h *PermissionHandler) GetState(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.state(), nil)
}

// Request godoc
// @Summary Запросить разрешение
// @Description Переводит Unknown/Denied в Requested и отправляет запрос разрешения устройству. В остальных состояниях ничего не меняет.
// @Tags Permission
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.PermissionResponse}
// @Router /api/v1/permission/request [post]
func (h *PermissionHandler) Request(c *fiber.Ctx) error {
	h.gate.RequestPermission()
	return utils.SendSuccess(c, h.state(), nil)
}

// Result godoc
// @Summary Ответ пользователя на запрос разрешения
// @Description Применяет результат запроса. Учитывается только в состоянии Requested.
// @Tags Permission
// @Accept json
// @Produce json
// @Param request body dto.PermissionResultRequest true "Результат запроса"
// @Success 200 {object} utils.SuccessResponse{data=dto.PermissionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/permission/result [post]
func (h *PermissionHandler) Result(c *fiber.Ctx) error {
	var req dto.PermissionResultRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": err.Error(),
		}))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	h.gate.OnExternalResult(*req.Granted)
	return utils.SendSuccess(c, h.state(), nil)
}

// Revoke godoc
// @Summary Отзыв разрешения
// @Description Синхронизирует отзыв разрешения на уровне ОС: Granted переходит в Denied
// @Tags Permission
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.PermissionResponse}
// @Router /api/v1/permission/revoke [post]
func (h *PermissionHandler) Revoke(c *fiber.Ctx) error {
	h.gate.OnRevoked()
	return utils.SendSuccess(c, h.state(), nil)
}

func (h *PermissionHandler) state() dto.PermissionResponse {
	return dto.PermissionResponse{State: h.gate.CurrentState()}
}
