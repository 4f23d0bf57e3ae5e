package accrual

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"go-hrms/internal/metrics"
)

const (
	DefaultInterval = time.Hour
	DefaultLockTTL  = 30 * time.Minute

	// done markers outlive the longest month
	doneTTL = 32 * 24 * time.Hour
)

type SchedulerOptions struct {
	Interval time.Duration
	LockTTL  time.Duration
	// Owner identifies this instance in the lock value.
	Owner string
	Now   func() time.Time
}

// Scheduler runs the current period on a ticker. A Redis lock keeps
// instances from running the same period at once, and a done key stops
// further ticks once a period completed cleanly. Without Redis every tick
// runs, which is safe because runs are idempotent.
type Scheduler struct {
	service Service
	rdb     *redis.Client
	opts    SchedulerOptions
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(service Service, rdb *redis.Client, opts SchedulerOptions, m *metrics.Metrics, logger ...*zap.Logger) *Scheduler {
	l := zap.L().Named("accrual.scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.scheduler")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultLockTTL
	}
	if opts.Owner == "" {
		host, _ := os.Hostname()
		opts.Owner = fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{service: service, rdb: rdb, opts: opts, metrics: m, logger: l}
}

func lockKey(p Period) string { return "accrual:lock:" + p.Key() }
func doneKey(p Period) string { return "accrual:done:" + p.Key() }

// Start runs one tick immediately and then one per interval until Stop or
// ctx is cancelled. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	s.logger.Info("accrual scheduler started", zap.Duration("interval", s.opts.Interval))
}

// Stop cancels the loop and waits for a running tick to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("accrual scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	result, ran, err := s.RunOnce(ctx)
	switch {
	case err != nil:
		s.logger.Error("scheduled accrual failed", zap.Error(err))
	case !ran:
		s.logger.Debug("scheduled accrual skipped")
	default:
		s.logger.Info("scheduled accrual done",
			zap.String("period", result.Period),
			zap.Int("employees", result.Employees),
			zap.Int("credited", result.Credited),
		)
	}
}

// RunOnce runs the current period unless it already completed or another
// instance holds the lock. ran reports whether the service was invoked.
func (s *Scheduler) RunOnce(ctx context.Context) (result RunResult, ran bool, err error) {
	period := PeriodOf(s.opts.Now())
	req := RunRequest{Year: period.Year, Month: int(period.Month)}

	if s.rdb == nil {
		result, err = s.service.Run(ctx, req)
		return result, true, err
	}

	n, err := s.rdb.Exists(ctx, doneKey(period)).Result()
	if err != nil {
		return RunResult{}, false, fmt.Errorf("check accrual done key: %w", err)
	}
	if n > 0 {
		return RunResult{}, false, nil
	}

	acquired, err := s.rdb.SetNX(ctx, lockKey(period), s.opts.Owner, s.opts.LockTTL).Result()
	if err != nil {
		return RunResult{}, false, fmt.Errorf("acquire accrual lock: %w", err)
	}
	if !acquired {
		s.metrics.ObserveAccrualRun("locked")
		return RunResult{}, false, nil
	}
	defer func() {
		if delErr := s.rdb.Del(context.WithoutCancel(ctx), lockKey(period)).Err(); delErr != nil {
			s.logger.Warn("release accrual lock failed", zap.Error(delErr))
		}
	}()

	result, err = s.service.Run(ctx, req)
	if err != nil {
		return result, true, err
	}
	if result.Failed == 0 {
		if err := s.rdb.Set(ctx, doneKey(period), s.opts.Owner, doneTTL).Err(); err != nil {
			s.logger.Warn("mark accrual period done failed", zap.Error(err))
		}
	}
	return result, true, nil
}
