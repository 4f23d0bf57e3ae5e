package accrual_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hrms/internal/accrual"
)

type fakeRunner struct {
	calls  atomic.Int32
	result accrual.RunResult
	err    error
	seen   chan accrual.RunRequest
}

func (f *fakeRunner) Run(_ context.Context, req accrual.RunRequest) (accrual.RunResult, error) {
	f.calls.Add(1)
	if f.seen != nil {
		select {
		case f.seen <- req:
		default:
		}
	}
	return f.result, f.err
}

var schedulerNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newScheduler(runner accrual.Service, rdb *redis.Client) *accrual.Scheduler {
	return accrual.NewScheduler(runner, rdb, accrual.SchedulerOptions{
		Interval: time.Hour,
		LockTTL:  30 * time.Minute,
		Owner:    "test",
		Now:      func() time.Time { return schedulerNow },
	}, nil)
}

func TestScheduler_RunOnce(t *testing.T) {
	const (
		lockKey = "accrual:lock:2026-03"
		doneKey = "accrual:done:2026-03"
	)

	t.Run("runs and marks the period done", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		runner := &fakeRunner{result: accrual.RunResult{Period: "2026-03", Employees: 3}}

		mock.ExpectExists(doneKey).SetVal(0)
		mock.ExpectSetNX(lockKey, "test", 30*time.Minute).SetVal(true)
		mock.ExpectSet(doneKey, "test", 32*24*time.Hour).SetVal("OK")
		mock.ExpectDel(lockKey).SetVal(1)

		got, ran, err := newScheduler(runner, rdb).RunOnce(context.Background())
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Equal(t, 3, got.Employees)
		assert.EqualValues(t, 1, runner.calls.Load())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("completed period is skipped", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		runner := &fakeRunner{}

		mock.ExpectExists(doneKey).SetVal(1)

		_, ran, err := newScheduler(runner, rdb).RunOnce(context.Background())
		require.NoError(t, err)
		assert.False(t, ran)
		assert.Zero(t, runner.calls.Load())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		runner := &fakeRunner{}

		mock.ExpectExists(doneKey).SetVal(0)
		mock.ExpectSetNX(lockKey, "test", 30*time.Minute).SetVal(false)

		_, ran, err := newScheduler(runner, rdb).RunOnce(context.Background())
		require.NoError(t, err)
		assert.False(t, ran)
		assert.Zero(t, runner.calls.Load())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("partial run leaves the period open", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		runner := &fakeRunner{result: accrual.RunResult{Failed: 1}}

		mock.ExpectExists(doneKey).SetVal(0)
		mock.ExpectSetNX(lockKey, "test", 30*time.Minute).SetVal(true)
		mock.ExpectDel(lockKey).SetVal(1)

		_, ran, err := newScheduler(runner, rdb).RunOnce(context.Background())
		require.NoError(t, err)
		assert.True(t, ran)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("run error releases the lock", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		runner := &fakeRunner{err: errors.New("db down")}

		mock.ExpectExists(doneKey).SetVal(0)
		mock.ExpectSetNX(lockKey, "test", 30*time.Minute).SetVal(true)
		mock.ExpectDel(lockKey).SetVal(1)

		_, ran, err := newScheduler(runner, rdb).RunOnce(context.Background())
		assert.EqualError(t, err, "db down")
		assert.True(t, ran)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		runner := &fakeRunner{}

		mock.ExpectExists(doneKey).SetErr(errors.New("redis down"))

		_, ran, err := newScheduler(runner, rdb).RunOnce(context.Background())
		assert.ErrorContains(t, err, "redis down")
		assert.False(t, ran)
		assert.Zero(t, runner.calls.Load())
	})

	t.Run("without redis every call runs", func(t *testing.T) {
		runner := &fakeRunner{}
		s := newScheduler(runner, nil)

		for i := 0; i < 2; i++ {
			_, ran, err := s.RunOnce(context.Background())
			require.NoError(t, err)
			assert.True(t, ran)
		}
		assert.EqualValues(t, 2, runner.calls.Load())
	})
}

func TestScheduler_StartStop(t *testing.T) {
	runner := &fakeRunner{seen: make(chan accrual.RunRequest, 1)}
	s := newScheduler(runner, nil)

	s.Start(context.Background())
	s.Start(context.Background())

	select {
	case req := <-runner.seen:
		assert.Equal(t, accrual.RunRequest{Year: 2026, Month: 3}, req)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not run on start")
	}

	s.Stop()
	s.Stop()
	assert.EqualValues(t, 1, runner.calls.Load())
}
