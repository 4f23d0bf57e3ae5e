package accrual

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	accrualerrors "go-hrms/internal/accrual/errors"
	"go-hrms/internal/tenant"
)

// Marker records that a leave type was credited to an employee for a
// period. Its unique key is what makes a rerun a no-op.
type Marker struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_accrual_markers_employee_type_period"`
	LeaveType  string          `gorm:"type:varchar(20);not null;uniqueIndex:uq_accrual_markers_employee_type_period"`
	Period     string          `gorm:"type:char(7);not null;uniqueIndex:uq_accrual_markers_employee_type_period"`
	Days       decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

func (Marker) TableName() string {
	return "accrual_markers"
}

func (Marker) TenantRelation() tenant.Relation {
	return tenant.Relation{Table: "employees", ForeignKey: "employee_id"}
}

func (m *Marker) TenantParentID() uuid.UUID { return m.EmployeeID }

func (m *Marker) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Period is one calendar month of accrual.
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year, month int) (Period, error) {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return Period{}, accrualerrors.ErrInvalidPeriod
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// PeriodOf returns the UTC month containing t.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// Key is the marker form, YYYY-MM.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start is the accrual date: employees who joined on or before it accrue.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}
