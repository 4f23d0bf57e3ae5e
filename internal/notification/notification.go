// Package notification tells people about leave request transitions.
// Delivery is asynchronous: the outbox notifier only records the intent.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dateutil"
)

// LeaveNotice describes one transition of a leave request.
type LeaveNotice struct {
	CompanyID      uuid.UUID
	LeaveRequestID uuid.UUID
	EmployeeID     uuid.UUID
	RecipientID    *uuid.UUID
	ActorID        uuid.UUID
	LeaveType      string
	StartDate      time.Time
	EndDate        time.Time
	Days           decimal.Decimal
	Status         string
	Comments       string
}

//go:generate mockgen -source=notification.go -destination=mock/notification_mock.go -package=mock
type Notifier interface {
	LeaveSubmitted(ctx context.Context, n LeaveNotice) error
	LeaveDecided(ctx context.Context, n LeaveNotice) error
	LeaveCancelled(ctx context.Context, n LeaveNotice) error
}

type nopNotifier struct{}

// NewNop returns a Notifier that drops everything.
func NewNop() Notifier { return nopNotifier{} }

func (nopNotifier) LeaveSubmitted(context.Context, LeaveNotice) error { return nil }
func (nopNotifier) LeaveDecided(context.Context, LeaveNotice) error   { return nil }
func (nopNotifier) LeaveCancelled(context.Context, LeaveNotice) error { return nil }

type outboxNotifier struct {
	outbox kafka.OutboxRepository
	topic  string
	now    func() time.Time
	logger *zap.Logger
}

// NewOutboxNotifier records notices as outbox rows for the relay worker.
func NewOutboxNotifier(outbox kafka.OutboxRepository, topic string, logger ...*zap.Logger) Notifier {
	l := zap.L().Named("notification.outbox")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.outbox")
	}
	if topic == "" {
		topic = events.LeaveNotificationTopic
	}
	return &outboxNotifier{outbox: outbox, topic: topic, now: time.Now, logger: l}
}

func (n *outboxNotifier) LeaveSubmitted(ctx context.Context, notice LeaveNotice) error {
	return n.publish(ctx, events.LeaveSubmittedType, notice)
}

// LeaveDecided emits leave.approved or leave.rejected from the notice status.
func (n *outboxNotifier) LeaveDecided(ctx context.Context, notice LeaveNotice) error {
	eventType := events.LeaveRejectedType
	if notice.Status == "APPROVED" {
		eventType = events.LeaveApprovedType
	}
	return n.publish(ctx, eventType, notice)
}

func (n *outboxNotifier) LeaveCancelled(ctx context.Context, notice LeaveNotice) error {
	return n.publish(ctx, events.LeaveCancelledType, notice)
}

func (n *outboxNotifier) publish(ctx context.Context, eventType string, notice LeaveNotice) error {
	requestID := contextutil.GetRequestID(ctx)
	evt := events.LeaveNotificationEvent{
		EventType:      eventType,
		RequestID:      requestID,
		CompanyID:      notice.CompanyID.String(),
		LeaveRequestID: notice.LeaveRequestID.String(),
		EmployeeID:     notice.EmployeeID.String(),
		ActorID:        notice.ActorID.String(),
		LeaveType:      notice.LeaveType,
		StartDate:      dateutil.Format(notice.StartDate),
		EndDate:        dateutil.Format(notice.EndDate),
		Days:           notice.Days.String(),
		Status:         notice.Status,
		Comments:       notice.Comments,
		OccurredAt:     n.now().UTC(),
	}
	if notice.RecipientID != nil {
		evt.RecipientID = notice.RecipientID.String()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	err = n.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     requestID,
		CompanyID:     evt.CompanyID,
		AggregateType: "leave_request",
		AggregateID:   evt.LeaveRequestID,
		EventType:     eventType,
		Topic:         n.topic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		n.logger.Error("queue leave notification failed",
			zap.String("event_type", eventType),
			zap.String("leave_request_id", evt.LeaveRequestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// LogSink is the delivery end of the notification topic. It writes every
// notice to the log; a mail or chat sender would take its place.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger ...*zap.Logger) *LogSink {
	l := zap.L().Named("notification.sink")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.sink")
	}
	return &LogSink{logger: l}
}

func (s *LogSink) Deliver(ctx context.Context, evt events.LeaveNotificationEvent) error {
	if evt.RecipientID == "" {
		s.logger.Debug("leave notification without recipient", zap.String("event_type", evt.EventType))
		return nil
	}
	s.logger.Info("leave notification delivered",
		zap.String("request_id", evt.RequestID),
		zap.String("event_type", evt.EventType),
		zap.String("company_id", evt.CompanyID),
		zap.String("recipient_id", evt.RecipientID),
		zap.String("leave_request_id", evt.LeaveRequestID),
		zap.String("leave_type", evt.LeaveType),
		zap.String("start_date", evt.StartDate),
		zap.String("end_date", evt.EndDate),
		zap.String("days", evt.Days),
		zap.String("status", evt.Status),
	)
	return nil
}
