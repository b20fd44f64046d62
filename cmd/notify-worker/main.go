package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
	"github.com/AHLJvanderPlas/Podfy-app/internal/logger"
	"github.com/AHLJvanderPlas/Podfy-app/internal/mail"
	"github.com/AHLJvanderPlas/Podfy-app/internal/queue"
	"github.com/AHLJvanderPlas/Podfy-app/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	log.Info().Str("version", cfg.App.Version).Msg("Starting notify worker")

	redisClient, err := queue.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	sender := mail.NewSMTPSender(cfg)
	notifyWorker := worker.NewNotifyWorker(cfg, sender, redisClient)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down notify worker...")
		cancel()
	}()

	if err := notifyWorker.Start(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("Notify worker stopped with error")
	}

	notifyWorker.Stop()
	log.Info().Msg("Notify worker exited")
}
