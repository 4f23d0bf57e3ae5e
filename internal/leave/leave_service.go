package leave

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-hrms/internal/company"
	"go-hrms/internal/employee"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/metrics"
	"go-hrms/internal/notification"
	"go-hrms/internal/rbac"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dateutil"
	"go-hrms/internal/tenant"
)

const (
	DefaultMinNoticeDays = 2
	maxBalanceAttempts   = 3
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, id, approverID, comments string) (LeaveResponse, error)
	Reject(ctx context.Context, id, approverID, comments string) (LeaveResponse, error)
	Cancel(ctx context.Context, id, actorID string) (LeaveResponse, error)

	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	List(ctx context.Context, filter ListFilter) ([]LeaveResponse, int64, error)
	Balances(ctx context.Context, employeeID string, year int) ([]BalanceResponse, error)
	EnsureBalances(ctx context.Context, employeeID uuid.UUID, year int) error
}

// CompanyReader returns the company of the active tenant.
type CompanyReader interface {
	GetCurrent(ctx context.Context) (*company.Company, error)
}

type Options struct {
	MinNoticeDays int
	Now           func() time.Time
}

type service struct {
	db        *gorm.DB
	repo      Repository
	balances  BalanceStore
	holidays  HolidayRepository
	employees employee.Repository
	companies CompanyReader
	notifier  notification.Notifier
	metrics   *metrics.Metrics
	opts      Options
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	balances BalanceStore,
	holidays HolidayRepository,
	employees employee.Repository,
	companies CompanyReader,
	notifier notification.Notifier,
	m *metrics.Metrics,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MinNoticeDays < 0 {
		opts.MinNoticeDays = DefaultMinNoticeDays
	}
	if notifier == nil {
		notifier = notification.NewNop()
	}
	return &service{
		db:        db,
		repo:      repo,
		balances:  balances,
		holidays:  holidays,
		employees: employees,
		companies: companies,
		notifier:  notifier,
		metrics:   m,
		opts:      opts,
		logger:    l,
	}
}

func (s *service) Submit(ctx context.Context, actorID string, req SubmitLeaveRequest) (LeaveResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return LeaveResponse{}, err
	}
	employeeID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	policy, ok := PolicyFor(req.LeaveType)
	if !ok {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveType
	}
	duration := req.Duration
	if duration == "" {
		duration = DurationFullDay
	}
	if !validDuration(duration) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDuration
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	comp, err := s.companies.GetCurrent(ctx)
	if err != nil {
		return LeaveResponse{}, err
	}
	today := dateutil.Today(s.opts.Now(), comp.Location())
	if start.Before(today) {
		return LeaveResponse{}, leaveerrors.ErrPastDate
	}
	if !req.IsEmergency && start.Before(today.AddDate(0, 0, s.opts.MinNoticeDays)) {
		return LeaveResponse{}, leaveerrors.ErrInsufficientNotice
	}

	holidays, err := s.holidays.Between(ctx, start, end)
	if err != nil {
		return LeaveResponse{}, err
	}
	days, err := RequestedDays(start, end, duration, policy, holidays)
	if err != nil {
		return LeaveResponse{}, err
	}

	var lr *LeaveRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serializes overlap checks of one employee
		emp, err := s.employees.WithTx(tx).LockByID(ctx, employeeID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrEmployeeNotFound
		}
		if err != nil {
			return err
		}
		if !emp.IsActive {
			return leaveerrors.ErrEmployeeInactive
		}

		overlap, err := s.repo.WithTx(tx).HasOverlap(ctx, emp.ID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return leaveerrors.ErrOverlappingRequest
		}

		if policy.BalanceBearing {
			bal, err := s.balances.WithTx(tx).GetOrCreate(ctx, emp.ID, policy.Type, start.Year())
			if err != nil {
				return err
			}
			if bal.AvailableDays.LessThan(days) {
				return leaveerrors.ErrInsufficientBalance
			}
		}

		lr = &LeaveRequest{
			CompanyID:     companyID,
			EmployeeID:    emp.ID,
			LeaveType:     policy.Type,
			StartDate:     start,
			EndDate:       end,
			Duration:      duration,
			RequestedDays: days,
			Reason:        req.Reason,
			IsEmergency:   req.IsEmergency,
			Status:        StatusPending,
			ManagerID:     emp.ManagerID,
		}
		return s.repo.WithTx(tx).Create(ctx, lr)
	})
	if err != nil {
		s.log(ctx).Warn("submit leave failed",
			zap.String("employee_id", actorID),
			zap.String("leave_type", policy.Type),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.metrics.ObserveLeaveTransition(StatusPending, lr.LeaveType)
	s.log(ctx).Info("submit leave success",
		zap.String("leave_id", lr.ID.String()),
		zap.String("employee_id", actorID),
		zap.String("days", days.String()),
	)
	s.notify(ctx, s.notifier.LeaveSubmitted, lr, employeeID, lr.ManagerID)
	return mapToResponse(*lr), nil
}

func (s *service) Approve(ctx context.Context, id, approverID, comments string) (LeaveResponse, error) {
	return s.decide(ctx, id, approverID, comments, StatusApproved)
}

func (s *service) Reject(ctx context.Context, id, approverID, comments string) (LeaveResponse, error) {
	return s.decide(ctx, id, approverID, comments, StatusRejected)
}

// decide moves a PENDING request to APPROVED or REJECTED. Approval deducts
// the balance in the same transaction as the status write.
func (s *service) decide(ctx context.Context, id, approverID, comments, target string) (LeaveResponse, error) {
	leaveID, actor, err := parseIDs(id, approverID)
	if err != nil {
		return LeaveResponse{}, err
	}

	var lr *LeaveRequest
	err = s.withBalanceRetry(ctx, func(tx *gorm.DB) error {
		locked, err := s.lockRequest(ctx, tx, leaveID)
		if err != nil {
			return err
		}
		lr = locked
		if lr.Status != StatusPending {
			return leaveerrors.ErrInvalidStateTransition
		}
		if lr.EmployeeID == actor {
			return leaveerrors.ErrSelfApproval
		}

		now := s.opts.Now().UTC()
		if target == StatusApproved {
			if err := s.moveBalance(ctx, tx, lr, BalanceStore.DeductLeave); err != nil {
				return err
			}
			lr.ApprovedAt = &now
		}
		lr.Status = target
		lr.DecidedBy = &actor
		lr.ManagerComments = comments
		return s.writeFrom(ctx, tx, lr, StatusPending)
	})
	if err != nil {
		s.log(ctx).Warn("decide leave failed",
			zap.String("leave_id", id),
			zap.String("target_status", target),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	s.metrics.ObserveLeaveTransition(target, lr.LeaveType)
	s.log(ctx).Info("decide leave success", zap.String("leave_id", id), zap.String("status", target))
	requester := lr.EmployeeID
	s.notify(ctx, s.notifier.LeaveDecided, lr, actor, &requester)
	return mapToResponse(*lr), nil
}

// Cancel withdraws a PENDING or APPROVED request. The requester, the
// manager on record and HR may cancel; approved days go back to the balance.
func (s *service) Cancel(ctx context.Context, id, actorID string) (LeaveResponse, error) {
	leaveID, actor, err := parseIDs(id, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}

	var lr *LeaveRequest
	err = s.withBalanceRetry(ctx, func(tx *gorm.DB) error {
		locked, err := s.lockRequest(ctx, tx, leaveID)
		if err != nil {
			return err
		}
		lr = locked
		if !canCancel(ctx, lr, actor) {
			return leaveerrors.ErrCancelForbidden
		}

		from := lr.Status
		switch from {
		case StatusPending:
		case StatusApproved:
			if err := s.moveBalance(ctx, tx, lr, BalanceStore.RestoreLeave); err != nil {
				return err
			}
		default:
			return leaveerrors.ErrInvalidStateTransition
		}

		now := s.opts.Now().UTC()
		lr.Status = StatusCancelled
		lr.CancelledAt = &now
		return s.writeFrom(ctx, tx, lr, from)
	})
	if err != nil {
		s.log(ctx).Warn("cancel leave failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.metrics.ObserveLeaveTransition(StatusCancelled, lr.LeaveType)
	s.log(ctx).Info("cancel leave success", zap.String("leave_id", id))

	recipient := lr.ManagerID
	if actor != lr.EmployeeID {
		requester := lr.EmployeeID
		recipient = &requester
	}
	s.notify(ctx, s.notifier.LeaveCancelled, lr, actor, recipient)
	return mapToResponse(*lr), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	lr, err := s.repo.FindByID(ctx, leaveID)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*lr), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]LeaveResponse, int64, error) {
	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	resp := make([]LeaveResponse, len(rows))
	for i, lr := range rows {
		resp[i] = mapToResponse(lr)
	}
	return resp, total, nil
}

// Balances lists the ledger rows of an employee of the active company. A
// zero year means the current year in the company's timezone.
func (s *service) Balances(ctx context.Context, employeeID string, year int) ([]BalanceResponse, error) {
	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, leaveerrors.ErrEmployeeNotFound
	}
	if _, err := s.employees.FindByID(ctx, empID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrEmployeeNotFound
		}
		return nil, err
	}

	if year == 0 {
		comp, err := s.companies.GetCurrent(ctx)
		if err != nil {
			return nil, err
		}
		year = dateutil.Today(s.opts.Now(), comp.Location()).Year()
	}

	rows, err := s.balances.ListByEmployee(ctx, empID, year)
	if err != nil {
		return nil, err
	}

	resp := make([]BalanceResponse, len(rows))
	for i, b := range rows {
		resp[i] = mapToBalanceResponse(b)
	}
	return resp, nil
}

// EnsureBalances creates the empty ledger rows of every balance-bearing
// type for the year. Existing rows are left alone.
func (s *service) EnsureBalances(ctx context.Context, employeeID uuid.UUID, year int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.balances.WithTx(tx)
		for _, p := range BalanceTypes() {
			if _, err := store.GetOrCreate(ctx, employeeID, p.Type, year); err != nil {
				return err
			}
		}
		return nil
	})
}

// withBalanceRetry reruns fn in a fresh transaction when a balance write
// lost a version race.
func (s *service) withBalanceRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxBalanceAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(fn)
		if !errors.Is(err, leaveerrors.ErrBalanceConflict) {
			return err
		}
		s.metrics.IncBalanceConflict()
		s.log(ctx).Warn("leave balance conflict", zap.Int("attempt", attempt))
	}
	return err
}

func (s *service) lockRequest(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*LeaveRequest, error) {
	lr, err := s.repo.WithTx(tx).LockByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return lr, nil
}

func (s *service) writeFrom(ctx context.Context, tx *gorm.DB, lr *LeaveRequest, from string) error {
	err := s.repo.WithTx(tx).UpdateFrom(ctx, lr, from)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrInvalidStateTransition
	}
	return err
}

// moveBalance applies op to the request's existing balance row. Types
// without a ledger are skipped.
func (s *service) moveBalance(ctx context.Context, tx *gorm.DB, lr *LeaveRequest, op func(BalanceStore, context.Context, *LeaveBalance, decimal.Decimal) error) error {
	policy, ok := PolicyFor(lr.LeaveType)
	if !ok {
		return leaveerrors.ErrInvalidLeaveType
	}
	if !policy.BalanceBearing {
		return nil
	}

	store := s.balances.WithTx(tx)
	bal, err := store.Find(ctx, lr.EmployeeID, lr.LeaveType, lr.StartDate.Year())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrMissingBalanceRecord
	}
	if err != nil {
		return err
	}
	return op(store, ctx, bal, lr.RequestedDays)
}

func (s *service) notify(ctx context.Context, send func(context.Context, notification.LeaveNotice) error, lr *LeaveRequest, actor uuid.UUID, recipient *uuid.UUID) {
	err := send(ctx, notification.LeaveNotice{
		CompanyID:      lr.CompanyID,
		LeaveRequestID: lr.ID,
		EmployeeID:     lr.EmployeeID,
		RecipientID:    recipient,
		ActorID:        actor,
		LeaveType:      lr.LeaveType,
		StartDate:      lr.StartDate,
		EndDate:        lr.EndDate,
		Days:           lr.RequestedDays,
		Status:         lr.Status,
		Comments:       lr.ManagerComments,
	})
	if err != nil {
		s.log(ctx).Warn("leave notification failed",
			zap.String("leave_id", lr.ID.String()),
			zap.String("status", lr.Status),
			zap.Error(err),
		)
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func canCancel(ctx context.Context, lr *LeaveRequest, actor uuid.UUID) bool {
	if actor == lr.EmployeeID {
		return true
	}
	if lr.ManagerID != nil && *lr.ManagerID == actor {
		return true
	}
	switch contextutil.GetRole(ctx) {
	case rbac.RoleHR, rbac.RoleAdmin:
		return true
	}
	return false
}

func parseIDs(id, actorID string) (uuid.UUID, uuid.UUID, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, leaveerrors.ErrInvalidLeaveID
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, leaveerrors.ErrInvalidActorID
	}
	return leaveID, actor, nil
}

func parseRange(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := dateutil.Parse(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := dateutil.Parse(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	if start.Year() != end.Year() {
		return time.Time{}, time.Time{}, leaveerrors.ErrCrossYearRequest
	}
	return start, end, nil
}

func mapToResponse(lr LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:              lr.ID.String(),
		CompanyID:       lr.CompanyID.String(),
		EmployeeID:      lr.EmployeeID.String(),
		LeaveType:       lr.LeaveType,
		StartDate:       dateutil.Format(lr.StartDate),
		EndDate:         dateutil.Format(lr.EndDate),
		Duration:        lr.Duration,
		RequestedDays:   lr.RequestedDays.String(),
		Reason:          lr.Reason,
		IsEmergency:     lr.IsEmergency,
		Status:          lr.Status,
		ManagerID:       uuidToString(lr.ManagerID),
		DecidedBy:       uuidToString(lr.DecidedBy),
		ManagerComments: lr.ManagerComments,
		CreatedAt:       lr.CreatedAt.Format(time.RFC3339),
	}
	if lr.ApprovedAt != nil {
		v := lr.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if lr.CancelledAt != nil {
		v := lr.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &v
	}
	return resp
}

func mapToBalanceResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		LeaveType:     b.LeaveType,
		Year:          b.Year,
		TotalAccrued:  b.TotalAccrued.String(),
		UsedDays:      b.UsedDays.String(),
		AvailableDays: b.AvailableDays.String(),
	}
}

func uuidToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}
