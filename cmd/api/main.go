package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deliveryHTTP "github.com/frontandrew/skylane/internal/delivery/http"
	"github.com/frontandrew/skylane/internal/infrastructure/flightdata"
	"github.com/frontandrew/skylane/internal/infrastructure/routing"
	"github.com/frontandrew/skylane/internal/infrastructure/tat"
	"github.com/frontandrew/skylane/internal/pkg/config"
	"github.com/frontandrew/skylane/internal/pkg/database"
	"github.com/frontandrew/skylane/internal/pkg/jwt"
	"github.com/frontandrew/skylane/internal/pkg/logger"
	"github.com/frontandrew/skylane/internal/pkg/redis"
	"github.com/frontandrew/skylane/internal/repository/cached"
	"github.com/frontandrew/skylane/internal/repository/postgres"
	"github.com/frontandrew/skylane/internal/usecase/editor"
	"github.com/frontandrew/skylane/internal/usecase/persist"
	"github.com/frontandrew/skylane/internal/usecase/suggestion"
	"github.com/frontandrew/skylane/internal/usecase/transit"
	"github.com/frontandrew/skylane/internal/usecase/validation"
	"github.com/frontandrew/skylane/internal/workspace"
	"github.com/frontandrew/skylane/pkg/metrics"
)

func main() {
	// =========================================================================
	// Загрузка конфигурации
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Инициализация logger
	// =========================================================================

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.Output)
	log.Info("Starting SKYLANE API server", map[string]interface{}{
		"version": "1.0.0",
	})

	// =========================================================================
	// Подключение к PostgreSQL
	// =========================================================================

	ctx := context.Background()
	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer database.Close(db)

	log.Info("Connected to PostgreSQL", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	// =========================================================================
	// Подключение к Redis
	// =========================================================================

	cache, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer cache.Close()

	log.Info("Connected to Redis", map[string]interface{}{
		"host": cfg.Redis.Host,
		"port": cfg.Redis.Port,
	})

	// =========================================================================
	// Создание repositories
	// =========================================================================

	laneRepo := cached.NewLaneRepository(postgres.NewLaneRepository(db), cache)

	log.Info("Repositories initialized")

	// =========================================================================
	// Создание клиентов внешних сервисов
	// =========================================================================

	flightClient := flightdata.NewHTTPClient(cfg.FlightData.ServiceURL, cfg.FlightData.APIKey, cfg.FlightData.Timeout)
	routingClient := routing.NewHTTPClient(cfg.Routing.ServiceURL, cfg.Routing.APIKey, cfg.Routing.Timeout)
	tatClient := tat.NewHTTPClient(cfg.TAT.ServiceURL, cfg.TAT.APIKey, cfg.TAT.Timeout)

	// Проверяем доступность сервиса летных данных
	if err := flightClient.Health(ctx); err != nil {
		log.Warn("Flight data service is not available", map[string]interface{}{
			"error": err.Error(),
			"url":   cfg.FlightData.ServiceURL,
		})
		log.Warn("Lane validation will fail until flight data service is running")
	} else {
		log.Info("Flight data service is healthy", map[string]interface{}{
			"url": cfg.FlightData.ServiceURL,
		})
	}

	// =========================================================================
	// Создание JWT token service
	// =========================================================================

	tokenService := jwt.NewTokenService(cfg.JWT.SecretKey, cfg.JWT.AccessExpiry)

	log.Info("JWT token service initialized")

	// =========================================================================
	// Создание рабочего набора и метрик
	// =========================================================================

	ws := workspace.New()
	m := metrics.NewMetrics(cfg.Metrics.Namespace)

	// =========================================================================
	// Создание use case services
	// =========================================================================

	editorService := editor.NewService(ws, log)
	validationService := validation.NewService(ws, flightClient, log, m)
	suggestionService := suggestion.NewService(ws, routingClient, log)
	transitService := transit.NewService(ws, tatClient, log)
	persistService := persist.NewService(ws, laneRepo, log, m)

	// После сохранения или удаления сбрасываем кэшированные счетчики
	persistService.Subscribe(func(ctx context.Context, scope workspace.Scope) {
		log.Debug("Workspace persisted, dependent caches invalidated", map[string]interface{}{
			"scope_kind": scope.Kind,
			"scope_id":   scope.ID,
		})
	})

	log.Info("Use case services initialized")

	// =========================================================================
	// Создание HTTP handlers
	// =========================================================================

	laneHandler := deliveryHTTP.NewLaneHandler(persistService, log)
	editorHandler := deliveryHTTP.NewEditorHandler(editorService, log)
	validationHandler := deliveryHTTP.NewValidationHandler(validationService, log)
	suggestionHandler := deliveryHTTP.NewSuggestionHandler(suggestionService, log)
	transitHandler := deliveryHTTP.NewTransitHandler(transitService, log)

	log.Info("HTTP handlers initialized")

	// =========================================================================
	// Создание и настройка HTTP router
	// =========================================================================

	router := deliveryHTTP.NewRouter(
		laneHandler,
		editorHandler,
		validationHandler,
		suggestionHandler,
		transitHandler,
		tokenService,
		log,
	)

	handler := router.Setup()

	log.Info("HTTP router configured")

	// =========================================================================
	// Создание HTTP сервера
	// =========================================================================

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// =========================================================================
	// Запуск сервера в goroutine
	// =========================================================================

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("API server listening", map[string]interface{}{
			"address": srv.Addr,
		})
		serverErrors <- srv.ListenAndServe()
	}()

	// =========================================================================
	// Graceful shutdown
	// =========================================================================

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("Server error", map[string]interface{}{
			"error": err.Error(),
		})

	case sig := <-shutdown:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})

		// Даем серверу 30 секунд на graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})

			if err := srv.Close(); err != nil {
				log.Fatal("Failed to close server", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		log.Info("Server stopped gracefully")
	}
}
