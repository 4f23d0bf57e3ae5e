package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka/consumer"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/tenant"
)

// fakeReader serves msgs in order and then blocks until ctx ends.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	committed []int64
	drained   chan struct{}
	cancel    context.CancelFunc
}

func newFakeReader(cancel context.CancelFunc, msgs ...kafkago.Message) *fakeReader {
	for i := range msgs {
		msgs[i].Offset = int64(i)
	}
	return &fakeReader{msgs: msgs, cancel: cancel}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.msgs) == 0 {
		r.mu.Unlock()
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	r.mu.Unlock()
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type ensureCall struct {
	companyID  uuid.UUID
	employeeID uuid.UUID
	year       int
	requestID  string
}

type fakeEnsurer struct {
	calls []ensureCall
	err   error
}

func (f *fakeEnsurer) EnsureBalances(ctx context.Context, employeeID uuid.UUID, year int) error {
	companyID, _ := tenant.CompanyIDFrom(ctx)
	f.calls = append(f.calls, ensureCall{
		companyID:  companyID,
		employeeID: employeeID,
		year:       year,
		requestID:  contextutil.GetRequestID(ctx),
	})
	return f.err
}

func employeeCreated(t *testing.T, companyID, employeeID string) kafkago.Message {
	t.Helper()
	b, err := json.Marshal(events.EmployeeCreatedEvent{
		EventType:  events.EmployeeCreatedType,
		RequestID:  "req-1",
		EmployeeID: employeeID,
		CompanyID:  companyID,
		BadgeID:    "EMP-000001",
		JoinedAt:   "2026-03-02",
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

func runLifecycle(t *testing.T, ensurer *fakeEnsurer, msgs ...kafkago.Message) *fakeReader {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reader := newFakeReader(cancel, msgs...)
	consumer.ConsumeEmployeeLifecycle(ctx, reader, ensurer, zap.NewNop())
	return reader
}

func TestConsumeEmployeeLifecycle(t *testing.T) {
	companyID, employeeID := uuid.New(), uuid.New()

	t.Run("opens balances in the employee's company", func(t *testing.T) {
		ensurer := &fakeEnsurer{}
		reader := runLifecycle(t, ensurer, employeeCreated(t, companyID.String(), employeeID.String()))

		require.Len(t, ensurer.calls, 1)
		call := ensurer.calls[0]
		assert.Equal(t, companyID, call.companyID)
		assert.Equal(t, employeeID, call.employeeID)
		assert.Equal(t, time.Now().UTC().Year(), call.year)
		assert.Equal(t, "req-1", call.requestID)
		assert.Equal(t, []int64{0}, reader.committed)
	})

	t.Run("undecodable and malformed events are committed and skipped", func(t *testing.T) {
		ensurer := &fakeEnsurer{}
		reader := runLifecycle(t, ensurer,
			kafkago.Message{Value: []byte("{not json")},
			employeeCreated(t, "nope", employeeID.String()),
			employeeCreated(t, companyID.String(), "nope"),
		)

		assert.Empty(t, ensurer.calls)
		assert.Equal(t, []int64{0, 1, 2}, reader.committed)
	})

	t.Run("cross tenant employee is skipped", func(t *testing.T) {
		ensurer := &fakeEnsurer{err: tenant.ErrCrossTenantWrite}
		reader := runLifecycle(t, ensurer, employeeCreated(t, companyID.String(), employeeID.String()))

		assert.Len(t, ensurer.calls, 1)
		assert.Equal(t, []int64{0}, reader.committed)
	})

	t.Run("transient failure is not committed", func(t *testing.T) {
		ensurer := &fakeEnsurer{err: errors.New("db down")}
		reader := runLifecycle(t, ensurer, employeeCreated(t, companyID.String(), employeeID.String()))

		assert.Len(t, ensurer.calls, 1)
		assert.Empty(t, reader.committed)
	})
}

type fakeSink struct {
	delivered []events.LeaveNotificationEvent
	err       error
}

func (f *fakeSink) Deliver(_ context.Context, evt events.LeaveNotificationEvent) error {
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, evt)
	return nil
}

func TestConsumeLeaveNotifications(t *testing.T) {
	payload, err := json.Marshal(events.LeaveNotificationEvent{
		EventType:   events.LeaveSubmittedType,
		RecipientID: "manager",
		LeaveType:   "CL",
		Days:        "1",
	})
	require.NoError(t, err)

	t.Run("delivers and commits", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sink := &fakeSink{}
		reader := newFakeReader(cancel,
			kafkago.Message{Value: payload},
			kafkago.Message{Value: []byte("garbage")},
		)
		consumer.ConsumeLeaveNotifications(ctx, reader, sink, zap.NewNop())

		require.Len(t, sink.delivered, 1)
		assert.Equal(t, "manager", sink.delivered[0].RecipientID)
		assert.Equal(t, []int64{0, 1}, reader.committed)
	})

	t.Run("sink failure leaves the message uncommitted", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		reader := newFakeReader(cancel, kafkago.Message{Value: payload})
		consumer.ConsumeLeaveNotifications(ctx, reader, &fakeSink{err: errors.New("smtp down")}, zap.NewNop())

		assert.Empty(t, reader.committed)
	})
}
