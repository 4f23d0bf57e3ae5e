package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka/consumer"
	"go-hrms/internal/notification"
	"go-hrms/internal/shared/connection"
)

// RunConsumer opens leave ledgers for new employees and delivers leave
// notifications until ctx ends.
func (a *App) RunConsumer(ctx context.Context, m *Modules) error {
	logger := a.Logger.Named("app.consumer")
	cfg := a.Config

	if err := connection.ConnectKafkaWithRetry(cfg.Kafka.Brokers, cfg.Kafka.Retries, a.Logger); err != nil {
		return err
	}

	lifecycle := consumer.NewReader(cfg.Kafka.Brokers, events.EmployeeCreatedTopic, cfg.Kafka.ConsumerGroup+"-lifecycle")
	notices := consumer.NewReader(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic, cfg.Kafka.ConsumerGroup)
	defer func() {
		for _, r := range []interface{ Close() error }{lifecycle, notices} {
			if err := r.Close(); err != nil {
				logger.Warn("close kafka reader failed", zap.Error(err))
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeEmployeeLifecycle(ctx, lifecycle, m.Leave, a.Logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeLeaveNotifications(ctx, notices, notification.NewLogSink(a.Logger), a.Logger)
	}()

	<-ctx.Done()
	logger.Info("consumer shutting down")
	wg.Wait()
	return nil
}
