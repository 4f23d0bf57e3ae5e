package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-hrms/internal/tenant"
)

type ListFilter struct {
	EmployeeID *uuid.UUID
	ManagerID  *uuid.UUID
	Status     string
	LeaveType  string
	Year       int
	Limit      int
	Offset     int
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, r *LeaveRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	LockByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, int64, error)
	// UpdateFrom writes r only while the stored status still equals from.
	UpdateFrom(ctx context.Context, r *LeaveRequest, from string) error
	HasOverlap(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (bool, error)
}

type repository struct {
	requests *tenant.Repository[LeaveRequest]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{requests: tenant.NewRepository[LeaveRequest](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{requests: r.requests.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	return r.requests.Create(ctx, lr)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	return r.requests.FindByID(ctx, id)
}

func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	return r.requests.FindByID(ctx, id, func(db *gorm.DB) *gorm.DB {
		return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	})
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, int64, error) {
	where := func(db *gorm.DB) *gorm.DB {
		if filter.EmployeeID != nil {
			db = db.Where("employee_id = ?", *filter.EmployeeID)
		}
		if filter.ManagerID != nil {
			db = db.Where("manager_id = ?", *filter.ManagerID)
		}
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.LeaveType != "" {
			db = db.Where("leave_type = ?", filter.LeaveType)
		}
		if filter.Year > 0 {
			from := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
			db = db.Where("start_date >= ? AND start_date < ?", from, from.AddDate(1, 0, 0))
		}
		return db
	}

	total, err := r.requests.Count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.requests.Find(ctx, where, func(db *gorm.DB) *gorm.DB {
		db = db.Order("start_date DESC").Order("created_at DESC")
		if filter.Limit > 0 {
			db = db.Limit(filter.Limit).Offset(filter.Offset)
		}
		return db
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) UpdateFrom(ctx context.Context, lr *LeaveRequest, from string) error {
	return r.requests.Update(ctx, lr, clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: "status"},
		Value:  from,
	})
}

// HasOverlap reports whether a pending or approved request of the employee
// shares at least one day with [start, end].
func (r *repository) HasOverlap(ctx context.Context, employeeID uuid.UUID, start, end time.Time) (bool, error) {
	n, err := r.requests.Count(ctx, func(db *gorm.DB) *gorm.DB {
		return db.
			Where("employee_id = ?", employeeID).
			Where("status IN ?", []string{StatusPending, StatusApproved}).
			Where("start_date <= ? AND end_date >= ?", end, start)
	})
	return n > 0, err
}

type HolidayRepository interface {
	WithTx(tx *gorm.DB) HolidayRepository
	Create(ctx context.Context, h *Holiday) error
	FindByID(ctx context.Context, id uuid.UUID) (*Holiday, error)
	Delete(ctx context.Context, h *Holiday) error
	// Between lists the company's and the shared holidays touching [start, end].
	Between(ctx context.Context, start, end time.Time) ([]Holiday, error)
	// CreateShared adds a holiday visible to every company.
	CreateShared(ctx context.Context, h *Holiday) error
}

type holidayRepository struct {
	holidays *tenant.Repository[Holiday]
}

func NewHolidayRepository(db *gorm.DB) HolidayRepository {
	return &holidayRepository{holidays: tenant.NewRepository[Holiday](db)}
}

func (r *holidayRepository) WithTx(tx *gorm.DB) HolidayRepository {
	return &holidayRepository{holidays: r.holidays.WithTx(tx)}
}

func (r *holidayRepository) Create(ctx context.Context, h *Holiday) error {
	return r.holidays.Create(ctx, h)
}

func (r *holidayRepository) CreateShared(ctx context.Context, h *Holiday) error {
	h.CompanyID = nil
	return r.holidays.Unscoped().Create(ctx, h)
}

func (r *holidayRepository) FindByID(ctx context.Context, id uuid.UUID) (*Holiday, error) {
	return r.holidays.FindByID(ctx, id)
}

func (r *holidayRepository) Delete(ctx context.Context, h *Holiday) error {
	return r.holidays.Delete(ctx, h)
}

func (r *holidayRepository) Between(ctx context.Context, start, end time.Time) ([]Holiday, error) {
	return r.holidays.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("start_date <= ? AND end_date >= ?", end, start).Order("start_date ASC")
	})
}
