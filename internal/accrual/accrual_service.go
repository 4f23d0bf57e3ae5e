package accrual

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accrualerrors "go-hrms/internal/accrual/errors"
	"go-hrms/internal/company"
	"go-hrms/internal/config"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/metrics"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/tenant"
)

const (
	OutcomeCredited = "credited"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
	OutcomeDryRun   = "dry_run"

	maxCreditAttempts = 3
)

type RunRequest struct {
	Month  int
	Year   int
	DryRun bool
}

// RunResult counts a run. Employees counts employees processed without
// error; Credited and Skipped count (employee, type) pairs.
type RunResult struct {
	Period    string `json:"period"`
	DryRun    bool   `json:"dry_run"`
	Companies int    `json:"companies"`
	Employees int    `json:"employees"`
	Credited  int    `json:"credited"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
}

//go:generate mockgen -source=accrual_service.go -destination=mock/accrual_service_mock.go -package=mock
type Service interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

type CompanyLister interface {
	ListActive(ctx context.Context) ([]company.Company, error)
}

type EmployeeLister interface {
	FindEligibleForAccrual(ctx context.Context, joinedOnOrBefore time.Time) ([]employee.Employee, error)
}

type service struct {
	db        *gorm.DB
	companies CompanyLister
	employees EmployeeLister
	markers   MarkerRepository
	balances  leave.BalanceStore
	amounts   map[string]decimal.Decimal
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	companies CompanyLister,
	employees EmployeeLister,
	markers MarkerRepository,
	balances leave.BalanceStore,
	amounts map[string]decimal.Decimal,
	m *metrics.Metrics,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("accrual.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.service")
	}
	if amounts == nil {
		amounts = DefaultAmounts()
	}
	return &service{
		db:        db,
		companies: companies,
		employees: employees,
		markers:   markers,
		balances:  balances,
		amounts:   amounts,
		metrics:   m,
		logger:    l,
	}
}

// DefaultAmounts is the monthly credit of every balance-bearing type.
func DefaultAmounts() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, p := range leave.BalanceTypes() {
		out[p.Type] = p.MonthlyAccrual
	}
	return out
}

// AmountsFromConfig overrides the EL and SL defaults with configured values.
func AmountsFromConfig(opts config.LeaveOptions) (map[string]decimal.Decimal, error) {
	out := DefaultAmounts()
	for leaveType, raw := range map[string]string{
		leave.TypeEarned: opts.AccrualEL,
		leave.TypeSick:   opts.AccrualSL,
	} {
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil || v.IsNegative() || !v.Mod(decimal.NewFromFloat(0.5)).IsZero() {
			return nil, fmt.Errorf("%s accrual %q: %w", leaveType, raw, accrualerrors.ErrInvalidAmount)
		}
		out[leaveType] = v
	}
	return out, nil
}

// Run credits the period to every eligible employee of every active company.
// Rerunning a period only counts skips.
func (s *service) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	period, err := NewPeriod(req.Year, req.Month)
	if err != nil {
		return RunResult{}, err
	}

	if contextutil.GetRequestID(ctx) == "" {
		ctx = contextutil.WithRequestID(ctx, "accrual-"+uuid.NewString())
	}
	log := s.log(ctx).With(
		zap.String("period", period.Key()),
		zap.Bool("dry_run", req.DryRun),
		zap.String("request_id", contextutil.GetRequestID(ctx)),
	)
	ctx = contextutil.WithLogger(ctx, log)

	result := RunResult{Period: period.Key(), DryRun: req.DryRun}

	companies, err := s.companies.ListActive(ctx)
	if err != nil {
		s.metrics.ObserveAccrualRun("error")
		return result, fmt.Errorf("list active companies: %w", err)
	}

	for _, c := range companies {
		cctx := tenant.WithCompanyID(ctx, c.ID)
		employees, err := s.employees.FindEligibleForAccrual(cctx, period.Start())
		if err != nil {
			s.metrics.ObserveAccrualRun("error")
			return result, fmt.Errorf("list employees of company %s: %w", c.ID, err)
		}
		result.Companies++

		for _, emp := range employees {
			credited, skipped, err := s.accrueEmployee(cctx, emp.ID, period, req.DryRun)
			result.Credited += credited
			result.Skipped += skipped
			if err != nil {
				result.Failed++
				log.Warn("accrual failed for employee",
					zap.String("company_id", c.ID.String()),
					zap.String("employee_id", emp.ID.String()),
					zap.Error(err),
				)
				continue
			}
			result.Employees++
		}
	}

	switch {
	case req.DryRun:
		s.metrics.ObserveAccrualRun(OutcomeDryRun)
	case result.Failed > 0:
		s.metrics.ObserveAccrualRun("partial")
	default:
		s.metrics.ObserveAccrualRun("ok")
	}
	log.Info("accrual run finished",
		zap.Int("companies", result.Companies),
		zap.Int("employees", result.Employees),
		zap.Int("credited", result.Credited),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *service) accrueEmployee(ctx context.Context, employeeID uuid.UUID, period Period, dryRun bool) (credited, skipped int, err error) {
	for _, p := range leave.BalanceTypes() {
		amount := s.amounts[p.Type]

		if !amount.IsPositive() {
			if dryRun {
				continue
			}
			if _, err := s.balances.GetOrCreate(ctx, employeeID, p.Type, period.Year); err != nil {
				return credited, skipped, fmt.Errorf("ensure %s balance: %w", p.Type, err)
			}
			continue
		}

		if dryRun {
			done, err := s.markers.Exists(ctx, employeeID, p.Type, period)
			if err != nil {
				return credited, skipped, err
			}
			if done {
				skipped++
			} else {
				credited++
			}
			s.metrics.ObserveAccrual(p.Type, OutcomeDryRun)
			continue
		}

		err := s.credit(ctx, employeeID, p.Type, amount, period)
		switch {
		case errors.Is(err, accrualerrors.ErrAccrualAlreadyProcessed):
			skipped++
			s.metrics.ObserveAccrual(p.Type, OutcomeSkipped)
		case err != nil:
			s.metrics.ObserveAccrual(p.Type, OutcomeFailed)
			return credited, skipped, fmt.Errorf("credit %s: %w", p.Type, err)
		default:
			credited++
			s.metrics.ObserveAccrual(p.Type, OutcomeCredited)
		}
	}
	return credited, skipped, nil
}

// credit writes the marker and the balance credit in one transaction, so a
// period is credited exactly when its marker exists.
func (s *service) credit(ctx context.Context, employeeID uuid.UUID, leaveType string, amount decimal.Decimal, period Period) error {
	var err error
	for attempt := 1; attempt <= maxCreditAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			marked, err := s.markers.WithTx(tx).Mark(ctx, &Marker{
				EmployeeID: employeeID,
				LeaveType:  leaveType,
				Period:     period.Key(),
				Days:       amount,
			})
			if err != nil {
				return err
			}
			if !marked {
				return accrualerrors.ErrAccrualAlreadyProcessed
			}

			store := s.balances.WithTx(tx)
			row, err := store.GetOrCreate(ctx, employeeID, leaveType, period.Year)
			if err != nil {
				return err
			}
			return store.AddAccrual(ctx, row, amount)
		})
		if !errors.Is(err, leaveerrors.ErrBalanceConflict) {
			return err
		}
		s.metrics.IncBalanceConflict()
	}
	return err
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}
