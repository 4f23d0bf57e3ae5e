package leave

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/tenant"
)

// BalanceStore is the only writer of leave_balances. Every mutation runs the
// domain method on the row and persists it with a version compare-and-set.
//
//go:generate mockgen -source=leave_balance_store.go -destination=mock/leave_balance_store_mock.go -package=mock
type BalanceStore interface {
	WithTx(tx *gorm.DB) BalanceStore
	GetOrCreate(ctx context.Context, employeeID uuid.UUID, leaveType string, year int) (*LeaveBalance, error)
	// Find returns the row locked until the surrounding transaction ends,
	// or gorm.ErrRecordNotFound.
	Find(ctx context.Context, employeeID uuid.UUID, leaveType string, year int) (*LeaveBalance, error)
	AddAccrual(ctx context.Context, row *LeaveBalance, days decimal.Decimal) error
	DeductLeave(ctx context.Context, row *LeaveBalance, days decimal.Decimal) error
	RestoreLeave(ctx context.Context, row *LeaveBalance, days decimal.Decimal) error
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, year int) ([]LeaveBalance, error)
}

type balanceStore struct {
	balances *tenant.Repository[LeaveBalance]
}

func NewBalanceStore(db *gorm.DB) BalanceStore {
	return &balanceStore{balances: tenant.NewRepository[LeaveBalance](db)}
}

func (s *balanceStore) WithTx(tx *gorm.DB) BalanceStore {
	return &balanceStore{balances: s.balances.WithTx(tx)}
}

func (s *balanceStore) Find(ctx context.Context, employeeID uuid.UUID, leaveType string, year int) (*LeaveBalance, error) {
	return s.balances.First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.
			Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("employee_id = ? AND leave_type = ? AND year = ?", employeeID, leaveType, year)
	})
}

// GetOrCreate inserts an empty row when none exists. Concurrent creators
// converge on the same row through the unique key.
func (s *balanceStore) GetOrCreate(ctx context.Context, employeeID uuid.UUID, leaveType string, year int) (*LeaveBalance, error) {
	row, err := s.Find(ctx, employeeID, leaveType, year)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &LeaveBalance{
		EmployeeID:    employeeID,
		LeaveType:     leaveType,
		Year:          year,
		TotalAccrued:  decimal.Zero,
		UsedDays:      decimal.Zero,
		AvailableDays: decimal.Zero,
	}
	if _, err := s.balances.CreateIfAbsent(ctx, fresh); err != nil {
		return nil, err
	}
	return s.Find(ctx, employeeID, leaveType, year)
}

func (s *balanceStore) AddAccrual(ctx context.Context, row *LeaveBalance, days decimal.Decimal) error {
	return s.mutate(ctx, row, func(b *LeaveBalance) error { return b.Credit(days) })
}

func (s *balanceStore) DeductLeave(ctx context.Context, row *LeaveBalance, days decimal.Decimal) error {
	return s.mutate(ctx, row, func(b *LeaveBalance) error { return b.Deduct(days) })
}

func (s *balanceStore) RestoreLeave(ctx context.Context, row *LeaveBalance, days decimal.Decimal) error {
	return s.mutate(ctx, row, func(b *LeaveBalance) error { return b.Restore(days) })
}

func (s *balanceStore) ListByEmployee(ctx context.Context, employeeID uuid.UUID, year int) ([]LeaveBalance, error) {
	return s.balances.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("employee_id = ? AND year = ?", employeeID, year).Order("leave_type ASC")
	})
}

// mutate applies fn to a copy so a refused change leaves row untouched, then
// writes it only if nobody else bumped the version meanwhile.
func (s *balanceStore) mutate(ctx context.Context, row *LeaveBalance, fn func(*LeaveBalance) error) error {
	next := *row
	if err := fn(&next); err != nil {
		return err
	}
	next.Version = row.Version + 1

	err := s.balances.Update(ctx, &next, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: "version"},
		Value:  row.Version,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrBalanceConflict
	}
	if err != nil {
		return err
	}

	*row = next
	return nil
}
