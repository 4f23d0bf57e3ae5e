package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"go-hrms/internal/accrual"
	"go-hrms/internal/messaging/kafka/producer"
	"go-hrms/internal/shared/connection"
)

// RunWorker relays outbox rows to Kafka and runs the accrual scheduler
// until ctx ends.
func (a *App) RunWorker(ctx context.Context, m *Modules) error {
	logger := a.Logger.Named("app.worker")
	cfg := a.Config

	if err := connection.ConnectKafkaWithRetry(cfg.Kafka.Brokers, cfg.Kafka.Retries, a.Logger); err != nil {
		return err
	}
	writer := producer.NewWriter(cfg.Kafka.Brokers)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Warn("close kafka writer failed", zap.Error(err))
		}
	}()

	scheduler := a.NewScheduler(m)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		producer.ProcessOutboxEvents(
			ctx,
			m.Outbox,
			writer,
			a.Metrics,
			a.Logger,
			cfg.Kafka.RelayInterval,
			cfg.Kafka.RelayBatchSize,
		)
	}()

	<-ctx.Done()
	logger.Info("worker shutting down")
	wg.Wait()
	return nil
}

func (a *App) NewScheduler(m *Modules) *accrual.Scheduler {
	return accrual.NewScheduler(m.Accrual, a.Redis, accrual.SchedulerOptions{
		Interval: a.Config.Leave.AccrualInterval,
		LockTTL:  a.Config.Leave.AccrualLockTTL,
	}, a.Metrics, a.Logger)
}
