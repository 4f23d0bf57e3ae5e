package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/tenant"
)

type LeaveRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`

	LeaveType     string          `gorm:"type:varchar(20);not null"`
	StartDate     time.Time       `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate       time.Time       `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	Duration      string          `gorm:"type:varchar(20);not null"`
	RequestedDays decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	Reason        string          `gorm:"type:text"`
	IsEmergency   bool            `gorm:"not null"`

	Status          string     `gorm:"type:varchar(20);not null;index:idx_leave_requests_company_status"`
	ManagerID       *uuid.UUID `gorm:"type:uuid;index"`
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	ManagerComments string     `gorm:"type:text"`

	ApprovedAt  *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

func (LeaveRequest) TenantColumn() string              { return tenant.DefaultColumn }
func (r *LeaveRequest) OwnerCompanyID() uuid.UUID      { return r.CompanyID }
func (r *LeaveRequest) SetOwnerCompanyID(id uuid.UUID) { r.CompanyID = id }

func (r *LeaveRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *LeaveRequest) Validate() error {
	if r.StartDate.After(r.EndDate) {
		return leaveerrors.ErrInvalidDateRange
	}
	if !r.RequestedDays.IsPositive() {
		return leaveerrors.ErrInvalidDays
	}
	switch r.Status {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return nil
	}
	return leaveerrors.ErrInvalidStateTransition
}

// LeaveBalance is the ledger row of one employee, leave type and year. It
// reaches its company through the employee.
type LeaveBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balances_employee_type_year"`
	LeaveType  string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_leave_balances_employee_type_year"`
	Year       int       `gorm:"not null;uniqueIndex:uq_leave_balances_employee_type_year"`

	TotalAccrued  decimal.Decimal `gorm:"type:numeric(7,1);not null"`
	UsedDays      decimal.Decimal `gorm:"type:numeric(7,1);not null"`
	AvailableDays decimal.Decimal `gorm:"type:numeric(7,1);not null"`
	Version       int64           `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

func (LeaveBalance) TenantRelation() tenant.Relation {
	return tenant.Relation{Table: "employees", ForeignKey: "employee_id"}
}

func (b *LeaveBalance) TenantParentID() uuid.UUID { return b.EmployeeID }

func (b *LeaveBalance) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

var half = decimal.NewFromFloat(0.5)

// checkDays accepts positive multiples of half a day.
func checkDays(days decimal.Decimal) error {
	if !days.IsPositive() || !days.Mod(half).IsZero() {
		return leaveerrors.ErrInvalidDays
	}
	return nil
}

// Credit adds accrued days.
func (b *LeaveBalance) Credit(days decimal.Decimal) error {
	if err := checkDays(days); err != nil {
		return err
	}
	b.TotalAccrued = b.TotalAccrued.Add(days)
	b.AvailableDays = b.AvailableDays.Add(days)
	return nil
}

// Deduct consumes days for an approved request.
func (b *LeaveBalance) Deduct(days decimal.Decimal) error {
	if err := checkDays(days); err != nil {
		return err
	}
	if b.AvailableDays.LessThan(days) {
		return leaveerrors.ErrInsufficientBalance
	}
	b.UsedDays = b.UsedDays.Add(days)
	b.AvailableDays = b.AvailableDays.Sub(days)
	return nil
}

// Restore gives back days of a cancelled approved request.
func (b *LeaveBalance) Restore(days decimal.Decimal) error {
	if err := checkDays(days); err != nil {
		return err
	}
	if b.UsedDays.LessThan(days) {
		return leaveerrors.ErrLedgerInvariant
	}
	b.UsedDays = b.UsedDays.Sub(days)
	b.AvailableDays = b.AvailableDays.Add(days)
	return nil
}

// Validate enforces available == total_accrued - used with no negative part.
func (b *LeaveBalance) Validate() error {
	if b.TotalAccrued.IsNegative() || b.UsedDays.IsNegative() || b.AvailableDays.IsNegative() {
		return leaveerrors.ErrLedgerInvariant
	}
	if !b.AvailableDays.Equal(b.TotalAccrued.Sub(b.UsedDays)) {
		return leaveerrors.ErrLedgerInvariant
	}
	return nil
}

// Holiday excludes days from working-day counts. A nil company marks a
// shared holiday visible to every company.
type Holiday struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID *uuid.UUID `gorm:"type:uuid;index"`
	Name      string     `gorm:"type:varchar(150);not null"`
	StartDate time.Time  `gorm:"type:date;not null;index"`
	EndDate   time.Time  `gorm:"type:date;not null"`
	CreatedAt time.Time  `gorm:"not null"`
}

func (Holiday) TableName() string {
	return "holidays"
}

// TenantFilter shows a company its own holidays and the shared ones.
func (Holiday) TenantFilter(companyID uuid.UUID) clause.Expression {
	col := clause.Column{Table: clause.CurrentTable, Name: tenant.DefaultColumn}
	return clause.Or(clause.Eq{Column: col, Value: companyID}, clause.Eq{Column: col, Value: nil})
}

func (Holiday) TenantColumn() string { return tenant.DefaultColumn }

func (h *Holiday) OwnerCompanyID() uuid.UUID {
	if h.CompanyID == nil {
		return uuid.Nil
	}
	return *h.CompanyID
}

func (h *Holiday) SetOwnerCompanyID(id uuid.UUID) { h.CompanyID = &id }

func (h *Holiday) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

func (h *Holiday) Validate() error {
	if h.StartDate.After(h.EndDate) {
		return leaveerrors.ErrInvalidDateRange
	}
	return nil
}
