package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tilequery-overlay/internal/domain"
	"github.com/tilequery-overlay/internal/pkg/errors"
	"github.com/tilequery-overlay/internal/pkg/utils"
	"github.com/tilequery-overlay/internal/pkg/validator"
	"github.com/tilequery-overlay/internal/usecase"
	"github.com/tilequery-overlay/internal/usecase/dto"
	"go.uber.org/zap"
)

// OverlayReader отдаёт текущий снимок оверлея
type OverlayReader interface {
	CurrentOverlay() domain.OverlaySource
}

// OverlayController - операции контроллера оверлея, доступные по HTTP
type OverlayController interface {
	OverlayReader
	OnTrigger(point domain.Point) (uint64, error)
	Parameters() domain.QueryParameters
}

// OverlayHandler - обработчик тапов и чтения оверлея
type OverlayHandler struct {
	controller OverlayController
	journal    usecase.JournalUseCase
	logger     *zap.Logger
}

// NewOverlayHandler - создание нового OverlayHandler
func NewOverlayHandler(controller OverlayController, journal usecase.JournalUseCase, logger *zap.Logger) *OverlayHandler {
	return &OverlayHandler{
		controller: controller,
		journal:    journal,
		logger:     logger,
	}
}

// Tap godoc
// @Summary Тап по карте
// @Description Выдаёт запрос Tilequery для точки тапа и сразу возвращает его id. Оверлей обновится, когда придёт ответ, если за это время не был применён более новый запрос.
// @Tags Overlay
// @Accept json
// @Produce json
// @Param request body dto.TapRequest true "Точка тапа"
// @Success 202 {object} utils.SuccessResponse{data=dto.TapResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/overlay/tap [post]
func (h *OverlayHandler) Tap(c *fiber.Ctx) error {
	var req dto.TapRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"body": err.Error(),
		}))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	point := req.Point()
	id, err := h.controller.OnTrigger(point)
	if err != nil {
		h.logger.Warn("Tap rejected", zap.Stringer("point", point), zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendAccepted(c, dto.TapResponse{
		RequestID:  id,
		Origin:     point,
		Parameters: h.controller.Parameters(),
	}, &utils.Meta{RequestID: id})
}

// GetOverlay godoc
// @Summary Текущий оверлей
// @Description Возвращает фичи последнего применённого ответа Tilequery и id этого запроса
// @Tags Overlay
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.OverlayResponse}
// @Router /api/v1/overlay [get]
func (h *OverlayHandler) GetOverlay(c *fiber.Ctx) error {
	resp := dto.NewOverlayResponse(h.controller.CurrentOverlay())
	return utils.SendSuccess(c, resp, &utils.Meta{
		Total:     resp.FeatureCount,
		RequestID: resp.LastAppliedRequestID,
	})
}

// GetGeoJSON godoc
// @Summary Оверлей как GeoJSON
// @Description Возвращает FeatureCollection без обёртки, пригодную как URL источника GeoJSON
// @Tags Overlay
// @Produce application/geo+json
// @Success 200 {object} object
// @Router /api/v1/overlay/geojson [get]
func (h *OverlayHandler) GetGeoJSON(c *fiber.Ctx) error {
	overlay := h.controller.CurrentOverlay()
	c.Set("X-Overlay-Request-Id", strconv.FormatUint(overlay.LastAppliedRequestID, 10))
	return c.JSON(overlay.Features, "application/geo+json")
}

// GetJournal godoc
// @Summary Журнал запросов Tilequery
// @Description Последние запросы с их итогом (applied, stale, failed), новые первыми. Доступен, если настроен Postgres.
// @Tags Overlay
// @Produce json
// @Param limit query int false "Количество записей (1-200)" default(20)
// @Success 200 {object} utils.SuccessResponse{data=dto.JournalResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/overlay/journal [get]
func (h *OverlayHandler) GetJournal(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", usecase.DefaultJournalLimit)

	records, err := h.journal.RecentQueries(c.UserContext(), limit)
	if err != nil {
		return utils.SendError(c, err)
	}
	if records == nil {
		records = []*domain.QueryRecord{}
	}

	return utils.SendSuccess(c, dto.JournalResponse{Records: records}, &utils.Meta{
		Total: len(records),
		Limit: limit,
	})
}
