package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"github.com/tilequery-overlay/internal/config"
	"github.com/tilequery-overlay/internal/delivery/http/handler"
	"github.com/tilequery-overlay/internal/delivery/http/middleware"
	"github.com/tilequery-overlay/internal/pkg/errors"
	"github.com/tilequery-overlay/internal/pkg/metrics"
	"github.com/tilequery-overlay/internal/pkg/utils"
	"go.uber.org/zap"
)

// Handlers - обработчики, которые регистрирует сервер
type Handlers struct {
	Health     *handler.HealthHandler
	Permission *handler.PermissionHandler
	Location   *handler.LocationHandler
	Overlay    *handler.OverlayHandler
	OverlayHub *handler.OverlayHub
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Tilequery Overlay",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App возвращает fiber приложение (для app.Test в тестах)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(metrics.Middleware())
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)
	s.app.Get("/metrics", metrics.Handler())

	api := s.app.Group("/api/v1")

	api.Get("/health", s.handlers.Health.Health)

	// Permission routes
	permission := api.Group("/permission")
	permission.Get("", s.handlers.Permission.GetState)
	permission.Post("/request", s.handlers.Permission.Request)
	permission.Post("/result", s.handlers.Permission.Result)
	permission.Post("/revoke", s.handlers.Permission.Revoke)

	// Location routes
	location := api.Group("/location")
	location.Get("", s.handlers.Location.GetLocation)
	location.Post("/start", s.handlers.Location.Start)
	location.Post("/stop", s.handlers.Location.Stop)
	location.Post("/fix", s.handlers.Location.PushFix)

	// Overlay routes
	overlay := api.Group("/overlay")
	overlay.Get("", s.handlers.Overlay.GetOverlay)
	overlay.Get("/geojson", s.handlers.Overlay.GetGeoJSON)
	overlay.Get("/journal", s.handlers.Overlay.GetJournal)
	overlay.Post("/tap", s.handlers.Overlay.Tap)

	overlay.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	overlay.Get("/ws", websocket.New(s.handlers.OverlayHub.Handle))
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404, 405, 426, паники) в общем формате ответа
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		appCode := errors.ErrInternalServer.Code

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			appCode = statusCodeName(code)
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(utils.ErrorResponse{
			Error: errors.New(appCode, err.Error(), code),
		})
	}
}

// statusCodeName: 426 -> UPGRADE_REQUIRED
func statusCodeName(code int) string {
	return strings.ToUpper(strings.ReplaceAll(fiberutils.StatusMessage(code), " ", "_"))
}
