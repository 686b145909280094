package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/pkg/errors"
	"github.com/tilequery-overlay/internal/pkg/utils"
	"github.com/tilequery-overlay/internal/pkg/validator"
	"github.com/tilequery-overlay/internal/usecase"
	"github.com/tilequery-overlay/internal/usecase/dto"
	"go.uber.org/zap"
)

// LocationTracker - операции трекера, доступные по HTTP
type LocationTracker interface {
	CurrentFix() (domain.LocationFix, bool)
	IsStarted() bool
	Start()
	Stop()
}

// PermissionStateReader отдаёт текущее состояние разрешения
type PermissionStateReader interface {
	CurrentState() domain.PermissionState
}

// FixSink принимает позиции от внешних источников
type FixSink interface {
	Push(source string, fix domain.LocationFix) bool
}

// LocationHandler - обработчик трекинга геолокации
type LocationHandler struct {
	tracker LocationTracker
	gate    PermissionStateReader
	sink    FixSink
	logger  *zap.Logger
	now     func() time.Time
}

// NewLocationHandler - создание нового LocationHandler
func NewLocationHandler(
	tracker LocationTracker,
	gate PermissionStateReader,
	sink FixSink,
	logger *zap.Logger,
) *LocationHandler {
	return &LocationHandler{
		tracker: tracker,
		gate:    gate,
		sink:    sink,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetLocation godoc
// @Summary Состояние трекинга
// @Description Возвращает состояние разрешения, признак активного трекинга и последнюю известную позицию
// @Tags Location
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.LocationResponse}
// @Router /api/v1/location [get]
func (h *LocationHandler) GetLocation(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.snapshot(), nil)
}

// Start godoc
// @Summary Запуск трекинга
// @Description Подписывается на провайдера геолокации. Без выданного разрешения возвращает 409.
// @Tags Location
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.LocationResponse}
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/location/start [post]
func (h *LocationHandler) Start(c *fiber.Ctx) error {
	if state := h.gate.CurrentState(); state != domain.PermissionGranted {
		return utils.SendError(c, errors.ErrPermissionDenied.WithDetails(map[string]interface{}{
			"permission": state.String(),
		}))
	}

	h.tracker.Start()
	return utils.SendSuccess(c, h.snapshot(), nil)
}

// Stop godoc
// @Summary Остановка трекинга
// @Tags Location
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.LocationResponse}
// @Router /api/v1/location/stop [post]
func (h *LocationHandler) Stop(c *fiber.Ctx) error {
	h.tracker.Stop()
	return utils.SendSuccess(c, h.snapshot(), nil)
}

// PushFix godoc
// @Summary Приём позиции устройства
// @Description Передаёт позицию в трекер. Позиция отбрасывается, если трекинг не запущен или она не новее сохранённой.
// @Tags Location
// @Accept json
// @Produce json
// @Param request body dto.LocationFixRequest true "Позиция устройства"
// @Success 202 {object} utils.SuccessResponse{data=dto.FixAcceptedResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/location/fix [post]
func (h *LocationHandler) PushFix(c *fiber.Ctx) error {
	var req dto.LocationFixRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": err.Error(),
		}))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	delivered := h.sink.Push(usecase.FixSourceHTTP, req.ToFix(h.now()))

	resp := dto.FixAcceptedResponse{Delivered: delivered}
	if fix, ok := h.tracker.CurrentFix(); ok {
		resp.Fix = &fix
	}
	return utils.SendAccepted(c, resp, nil)
}

func (h *LocationHandler) snapshot() dto.LocationResponse {
	resp := dto.LocationResponse{
		Permission: h.gate.CurrentState(),
		Tracking:   h.tracker.IsStarted(),
	}
	if fix, ok := h.tracker.CurrentFix(); ok {
		resp.Fix = &fix
	}
	return resp
}
