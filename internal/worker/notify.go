package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/AHLJvanderPlas/Podfy-app/internal/config"
	"github.com/AHLJvanderPlas/Podfy-app/internal/logger"
	"github.com/AHLJvanderPlas/Podfy-app/internal/mail"
	"github.com/AHLJvanderPlas/Podfy-app/internal/model"
	"github.com/AHLJvanderPlas/Podfy-app/internal/queue"
)

// NotifyWorker drains the notification retry queue. The inline dispatch in
// the intake pipeline already reported these as failed; this worker gives
// them a bounded second life before they land in the DLQ.
type NotifyWorker struct {
	cfg        *config.Config
	sender     mail.Sender
	consumer   *queue.Consumer
	workerPool *WorkerPool
	log        zerolog.Logger
}

func NewNotifyWorker(
	cfg *config.Config,
	sender mail.Sender,
	redisClient *queue.RedisClient,
) *NotifyWorker {
	return &NotifyWorker{
		cfg:        cfg,
		sender:     sender,
		consumer:   queue.NewConsumer(redisClient, cfg),
		workerPool: NewWorkerPool(cfg.Workers.Notify.Count),
		log:        logger.For("notify-worker"),
	}
}

func (w *NotifyWorker) Start(ctx context.Context) error {
	w.log.Info().Msg("Starting notify worker")

	w.workerPool.Start(ctx)

	return w.consumer.ConsumeNotifyQueue(ctx, w.handleMessage)
}

func (w *NotifyWorker) Stop() {
	w.log.Info().Msg("Stopping notify worker")
	w.workerPool.Stop()
}

func (w *NotifyWorker) handleMessage(ctx context.Context, data []byte) error {
	var job model.NotifyJob
	if err := json.Unmarshal(data, &job); err != nil {
		w.log.Error().Err(err).Msg("Failed to unmarshal notify job")
		return err
	}

	w.log.Info().Str("record_id", job.RecordID).Str("group", job.Group).Msg("Retrying notification")

	w.workerPool.Submit(func(ctx context.Context) error {
		return w.retrySend(ctx, job)
	})

	return nil
}

func (w *NotifyWorker) retrySend(ctx context.Context, job model.NotifyJob) error {
	log := w.log.With().Str("record_id", job.RecordID).Str("group", job.Group).Logger()

	msg := mail.Message{
		From:     w.cfg.Mail.From,
		To:       job.To,
		Subject:  job.Subject,
		HTMLBody: job.HTMLBody,
	}

	for attempt := 0; attempt < w.cfg.Mail.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.cfg.Mail.RetryDelay * time.Duration(attempt)):
			}
		}

		ok, err := w.sender.Send(msg)
		if err != nil {
			// Malformed input will not get better with retries.
			log.Error().Err(err).Msg("Notify job is malformed, dropping")
			return err
		}
		if ok {
			log.Info().Int("attempt", attempt+1).Msg("Notification delivered on retry")
			return nil
		}

		log.Warn().Int("attempt", attempt+1).Msg("Notification retry failed")
	}

	return fmt.Errorf("notification for %s (%s) exhausted %d retries", job.RecordID, job.Group, w.cfg.Mail.RetryAttempts)
}
