package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-hrms/internal/events"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/tenant"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type BalanceEnsurer interface {
	EnsureBalances(ctx context.Context, employeeID uuid.UUID, year int) error
}

type NotificationSink interface {
	Deliver(ctx context.Context, evt events.LeaveNotificationEvent) error
}

// NewReader builds a consumer group reader for one topic.
func NewReader(brokers []string, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: time.Second,
		StartOffset:    kafkago.FirstOffset,
	})
}

// errPermanent marks a message that will never succeed. Such messages are
// committed so they do not block the partition.
var errPermanent = errors.New("permanent consumer error")

func permanent(err error) error {
	return fmt.Errorf("%w: %w", errPermanent, err)
}

type handlerFunc func(ctx context.Context, msg kafkago.Message) error

// consume fetches until ctx ends. A message is committed when handle
// succeeds or fails permanently; transient failures stay uncommitted and
// are redelivered after a rebalance or restart.
func consume(ctx context.Context, reader MessageReader, log *zap.Logger, handle handlerFunc) {
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		mctx := ctx
		if rid := header(msg, "request_id"); rid != "" {
			mctx = contextutil.WithRequestID(mctx, rid)
		}

		if err := handle(mctx, msg); err != nil {
			if !errors.Is(err, errPermanent) {
				log.Error("handle message failed",
					zap.Int("partition", msg.Partition),
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				continue
			}
			log.Warn("skipping message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// ConsumeEmployeeLifecycle opens the current year's leave ledger for every
// created employee, inside the employee's company.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	balances BalanceEnsurer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	consume(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		return handleEmployeeCreated(ctx, msg, balances, log)
	})
}

func handleEmployeeCreated(ctx context.Context, msg kafkago.Message, balances BalanceEnsurer, log *zap.Logger) error {
	var event events.EmployeeCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return permanent(fmt.Errorf("decode employee_created event: %w", err))
	}
	if event.EventType != "" && event.EventType != events.EmployeeCreatedType {
		log.Debug("ignoring lifecycle event", zap.String("event_type", event.EventType))
		return nil
	}

	companyID, err := uuid.Parse(event.CompanyID)
	if err != nil {
		return permanent(fmt.Errorf("company_id %q: %w", event.CompanyID, err))
	}
	employeeID, err := uuid.Parse(event.EmployeeID)
	if err != nil {
		return permanent(fmt.Errorf("employee_id %q: %w", event.EmployeeID, err))
	}

	if event.RequestID != "" {
		ctx = contextutil.WithRequestID(ctx, event.RequestID)
	}
	ctx = tenant.WithCompanyID(ctx, companyID)

	year := time.Now().UTC().Year()
	if err := balances.EnsureBalances(ctx, employeeID, year); err != nil {
		if errors.Is(err, tenant.ErrCrossTenantWrite) {
			return permanent(err)
		}
		return fmt.Errorf("ensure leave balances: %w", err)
	}

	log.Info("leave balances opened",
		zap.String("employee_id", event.EmployeeID),
		zap.String("company_id", event.CompanyID),
		zap.Int("year", year),
	)
	return nil
}

// ConsumeLeaveNotifications hands every leave notification to sink.
func ConsumeLeaveNotifications(
	ctx context.Context,
	reader MessageReader,
	sink NotificationSink,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_notifications")
	consume(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		var event events.LeaveNotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return permanent(fmt.Errorf("decode leave notification: %w", err))
		}
		if err := sink.Deliver(ctx, event); err != nil {
			return fmt.Errorf("deliver %s: %w", event.EventType, err)
		}
		return nil
	})
}
