package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/handlers"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/SAP-F-2025/quiz-service/pkg"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Quiz service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.AutoMigrate(db); err != nil {
		return err
	}
	repo := postgres.NewRepository(db)

	// Cache
	var redisClient *redis.Client
	var resultCache cache.CacheService
	redisClient, err = pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", "error", err)
		resultCache = cache.NewMemoryCache()
	} else {
		resultCache = cache.NewRedisCache(redisClient, logger)
	}

	// Events
	eventPublisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		// Fallback to mock publisher for development
		eventPublisher = events.NewMockEventPublisher(logger)
	}

	// Identity
	casdoorsdk.InitConfig(
		cfg.Casdoor.Endpoint,
		cfg.Casdoor.ClientID,
		cfg.Casdoor.ClientSecret,
		cfg.Casdoor.Certificate,
		cfg.Casdoor.Organization,
		cfg.Casdoor.Application,
	)

	// Services
	v := validator.New()
	notifier := services.NewNotificationEventService(eventPublisher, logger)
	enrollment := services.NewEnrollmentService(repo, logger)
	questions := services.NewQuestionStore(repo.Questions)
	attemptService := services.NewAttemptService(repo, enrollment, questions, notifier, v, logger)
	resultService := services.NewResultService(repo, enrollment, questions, notifier, resultCache, cfg.CacheTTL, v, logger)
	userService := services.NewUserService(repo, resultCache, cfg.CacheTTL, logger)
	sweeper := services.NewAttemptSweeper(repo, notifier, logger, cfg.Sweeper.Timeout)

	if cfg.Sweeper.Enabled {
		if err := sweeper.Start(cfg.Sweeper.Schedule); err != nil {
			return err
		}
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handlerLogger := utils.NewSlogLogger(logger)
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(handlerLogger))

	handlerManager := handlers.NewHandlerManager(attemptService, resultService, sweeper, handlerLogger)
	handlerManager.SetupRoutes(router, handlers.AuthMiddleware(casdoorsdk.ParseJwtToken, userService, handlerLogger))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Quiz service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", "error", err)
		}
	}

	return shutdown(server, sweeper, eventPublisher, redisClient, logger)
}

func shutdown(server *http.Server, sweeper *services.AttemptSweeper, publisher events.EventPublisher, redisClient *redis.Client, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	select {
	case <-sweeper.Stop().Done():
	case <-ctx.Done():
		logger.Warn("Attempt sweep still running at shutdown")
	}

	if err := publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	logger.Info("Quiz service stopped")
	return errors.Join(errs...)
}
