package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"franklin/internal/adapter"
	"franklin/internal/adapter/gemini"
	"franklin/internal/cache"
	"franklin/internal/config"
	"franklin/internal/domain"
	"franklin/internal/handler"
	"franklin/internal/logger"
	"franklin/internal/middleware"
	"franklin/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer func() { _ = logger.Sync() }()

	// Redis backs the shared rate limit store and the file status cache.
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	}

	healthChecks := make(map[string]handler.Pinger)
	var store domain.RateLimitStore
	if cfg.RateLimit.Backend == "redis" {
		redisStore := adapter.NewRedisRateLimitStore(redisClient)
		healthChecks["redis"] = redisStore
		store = redisStore
		appLogger.Info("Using Redis rate limit store")
	} else {
		store = adapter.NewMemoryRateLimitStore()
		appLogger.Info("Using in-memory rate limit store")
	}
	limiter := service.NewRateLimiter(store, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	// Provider clients. Without an API key the server still starts and
	// requests fail with CONFIG_ERROR.
	var (
		generator domain.ContentGenerator
		files     domain.FileGateway
	)
	if cfg.HasAPIKey() {
		fileClient, err := gemini.NewFileClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL,
			&http.Client{Timeout: cfg.Gemini.Timeout}, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create Gemini file client", zap.Error(err))
		}
		files = fileClient
		if redisClient != nil {
			files = service.NewCachedFileGateway(fileClient, adapter.NewRedisFileStatusCache(redisClient), cfg.Cache.FileStatusTTL)
			appLogger.Info("File status cache enabled", zap.Duration("ttl", cfg.Cache.FileStatusTTL))
		}

		gen, err := gemini.NewGenerator(context.Background(), gemini.GeneratorConfig{
			APIKey:   cfg.Gemini.APIKey,
			Model:    cfg.Gemini.Model,
			BaseURL:  cfg.Gemini.BaseURL,
			Timeout:  cfg.Gemini.Timeout,
			JSONMode: cfg.Gemini.JSONMode,
		}, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create Gemini generator", zap.Error(err))
		}
		defer gen.Close()
		generator = gen
	} else {
		appLogger.Warn("GEMINI_API_KEY is not set; generation and ingestion requests will fail")
	}

	// Initialize services
	prompts := service.NewPromptBuilder(cfg.Generation.MinTextLength, cfg.Generation.FileQuestionCount)
	quizService := service.NewQuizService(generator, files, prompts, service.NewShuffler(nil), cfg.Generation.VerifyFiles)
	ingestionService := service.NewIngestionService(files, cfg.Upload)

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(quizService, cfg.Generation.MinTextLength)
	fileHandler := handler.NewFileHandler(ingestionService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders: "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,Retry-After",
		MaxAge:        300,
	}))

	handler.RegisterRoutes(app, handler.NewHealthHandler(healthChecks), quizHandler, fileHandler, limiter)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
