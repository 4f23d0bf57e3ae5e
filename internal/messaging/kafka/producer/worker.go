package producer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/metrics"
)

type Stats struct {
	Sent   int
	Failed int
}

// ProcessOutboxEvents relays pending outbox rows to Kafka until ctx ends.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	m *metrics.Metrics,
	logger *zap.Logger,
	pollInterval time.Duration,
	batchSize int,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := ProcessPendingEvents(ctx, repo, writer, m, batchSize, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// ProcessPendingEvents relays one batch. A failed publish marks the row
// failed and moves on; only a failed listing is returned.
func ProcessPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	m *metrics.Metrics,
	batchSize int,
	logger *zap.Logger,
) (Stats, error) {
	var stats Stats

	events, err := repo.ListPending(ctx, batchSize)
	if err != nil {
		return stats, err
	}
	if len(events) == 0 {
		return stats, nil
	}

	logger.Debug("processing pending outbox events", zap.Int("count", len(events)))

	for _, event := range events {
		if err := publishEvent(ctx, writer, event); err != nil {
			stats.Failed++
			m.ObserveOutbox("failed")
			logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Error(err),
			)
			if mErr := repo.MarkFailed(ctx, event.ID, err.Error()); mErr != nil {
				logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(mErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		stats.Sent++
		m.ObserveOutbox("sent")
		logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		)
	}

	return stats, nil
}
