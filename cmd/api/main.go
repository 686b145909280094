package main

// @title Tilequery Overlay API
// @version 1.0.0
// @description Сервис оверлея точек интереса поверх карты. По начальной позиции устройства и по тапам выполняет запросы Mapbox Tilequery и держит единственный источник фич для рендерера: применяется ответ самого нового запроса, устаревшие отбрасываются.
// @description
// @description Основные возможности:
// @description - Конечный автомат разрешения на геолокацию
// @description - Трекинг позиции из HTTP, Redis Streams и MQTT
// @description - Оверлей по HTTP, WebSocket и Redis
// @description - Журнал запросов Tilequery в PostgreSQL

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tilequery-overlay/docs"
	"github.com/tilequery-overlay/internal/config"
	httpDelivery "github.com/tilequery-overlay/internal/delivery/http"
	"github.com/tilequery-overlay/internal/delivery/http/handler"
	"github.com/tilequery-overlay/internal/domain/repository"
	"github.com/tilequery-overlay/internal/infrastructure/mapbox"
	"github.com/tilequery-overlay/internal/pkg/logger"
	"github.com/tilequery-overlay/internal/repository/cache"
	"github.com/tilequery-overlay/internal/repository/postgres"
	redisRepo "github.com/tilequery-overlay/internal/repository/redis"
	"github.com/tilequery-overlay/internal/usecase"
	"github.com/tilequery-overlay/internal/worker"
	"github.com/tilequery-overlay/internal/worker/location"
	"github.com/tilequery-overlay/internal/worker/overlay"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Tilequery Overlay")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("tileset", cfg.Mapbox.TilesetID),
	)

	params, err := cfg.Tilequery.Parameters()
	if err != nil {
		log.Fatal("Invalid tilequery parameters", zap.Error(err))
	}

	checks := make(map[string]handler.HealthCheck)

	// 3. Connect to Redis (snapshot cache + streams)
	var redisClient *cache.Redis
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		checks["redis"] = redisClient.Health
	}

	// 4. Connect to PostgreSQL (query journal)
	var db *postgres.DB
	var journalRepo repository.QueryJournalRepository
	if cfg.Database.Enabled {
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.Migrate(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}

		journalRepo = postgres.NewQueryJournalRepository(db)
		checks["postgres"] = db.Health
	}

	// 5. Initialize use cases
	var streamRepo repository.StreamRepository
	var prompter repository.PermissionPrompter
	if redisClient != nil {
		streamRepo = redisRepo.NewStreamRepository(redisClient.Client(), cfg.Worker.StreamReadTimeout, log)
		prompter = redisRepo.NewPermissionPrompter(streamRepo, log)
	}

	tilequery := mapbox.NewTilequeryClient(&cfg.Mapbox, log)
	reporter := usecase.NewObservabilityReporter(journalRepo, log)

	gate := usecase.NewPermissionGate(prompter, logger.Named(log, "permission"))
	relay := usecase.NewLocationRelay(logger.Named(log, "relay"))
	tracker := usecase.NewLocationTracker(gate, relay, logger.Named(log, "tracker"))
	controller := usecase.NewOverlayController(
		tilequery,
		params,
		reporter,
		cfg.Overlay.QueryTimeout,
		logger.Named(log, "overlay"),
	)

	// начальный фикс сессии выдаёт запрос
	tracker.Subscribe(controller.OnFix)

	hub := handler.NewOverlayHub(controller, logger.Named(log, "ws"))
	controller.Subscribe(hub.Observe)

	log.Info("Use cases initialized",
		zap.Uint("radius", params.RadiusMeters),
		zap.Uint("limit", params.Limit),
		zap.Stringer("geometry", params.Geometry),
	)

	// 6. Initialize workers
	manager := worker.NewWorkerManager(log)
	if streamRepo != nil {
		publisher := overlay.NewPublishWorker(
			cache.NewCacheRepository(redisClient),
			streamRepo,
			cfg.Overlay.SnapshotTTL,
			log,
		)
		controller.Subscribe(publisher.Observe)
		mustRegister(log, manager, publisher)
		mustRegister(log, manager, location.NewStreamFixWorker(streamRepo, relay, cfg.Worker.ConsumerGroup, log))
	}
	if cfg.MQTT.Enabled {
		mustRegister(log, manager, location.NewMQTTFixWorker(&cfg.MQTT, relay, log))
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	manager.Start(workerCtx)

	// 7. Initialize HTTP server
	server := httpDelivery.NewServer(cfg, log, httpDelivery.Handlers{
		Health:     handler.NewHealthHandler(checks, log),
		Permission: handler.NewPermissionHandler(gate, log),
		Location:   handler.NewLocationHandler(tracker, gate, relay, log),
		Overlay:    handler.NewOverlayHandler(controller, reporter, log),
		OverlayHub: hub,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.Int("workers", manager.Len()),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	tracker.Stop()
	if err := controller.Shutdown(ctx); err != nil {
		log.Error("Overlay controller shutdown error", zap.Error(err))
	}
	gate.WaitPrompts()

	// publisher сбрасывает последний снимок при остановке
	if err := manager.Stop(ctx); err != nil {
		log.Error("Worker shutdown error", zap.Error(err))
	}

	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}

func mustRegister(log *zap.Logger, manager *worker.WorkerManager, w worker.Worker) {
	if err := manager.Register(w); err != nil {
		log.Fatal("Failed to register worker", zap.String("worker", w.Name()), zap.Error(err))
	}
}
