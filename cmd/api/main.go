package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/AHLJvanderPlas/Podfy-app/internal/api"
	"github.com/AHLJvanderPlas/Podfy-app/internal/brand"
	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
	"github.com/AHLJvanderPlas/Podfy-app/internal/db"
	"github.com/AHLJvanderPlas/Podfy-app/internal/intake"
	"github.com/AHLJvanderPlas/Podfy-app/internal/logger"
	"github.com/AHLJvanderPlas/Podfy-app/internal/mail"
	"github.com/AHLJvanderPlas/Podfy-app/internal/queue"
	"github.com/AHLJvanderPlas/Podfy-app/internal/stamp"
	"github.com/AHLJvanderPlas/Podfy-app/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting API server")

	// Initialize database
	database, err := db.NewConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repo := db.NewRepository(database)

	// Initialize object storage
	store, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	// Initialize Redis client for the notification retry queue
	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	producer := queue.NewProducer(redisClient, cfg)

	// Wire the intake pipeline
	brands := brand.NewRegistry(cfg)
	sender := mail.NewSMTPSender(cfg)
	dispatcher := mail.NewDispatcher(cfg, sender, producer)
	orchestrator := intake.NewOrchestrator(cfg, repo, store, dispatcher, brands, stamp.NewPDFStamper())

	handler := api.NewHandler(repo, orchestrator, cfg)

	// Setup Gin router
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(api.RequestIDMiddleware())
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())
	router.Use(api.RecoveryMiddleware())
	router.MaxMultipartMemory = cfg.Intake.MaxUploadBytes

	// Setup routes
	api.SetupRoutes(router, handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown server
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
