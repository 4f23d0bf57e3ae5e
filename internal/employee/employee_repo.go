package employee

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-hrms/internal/tenant"
)

type ListFilter struct {
	ActiveOnly bool
	ManagerID  *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	LockByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Employee, int64, error)
	FindEligibleForAccrual(ctx context.Context, joinedOnOrBefore time.Time) ([]Employee, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, e *Employee) error

	// Lookups used during authentication, before any tenant is known.
	FindByBadgeIDUnscoped(ctx context.Context, badgeID string) (*Employee, error)
	FindByEmailUnscoped(ctx context.Context, email string) (*Employee, error)
	FindByUserIDUnscoped(ctx context.Context, userID uuid.UUID) (*Employee, error)
}

type repository struct {
	employees *tenant.Repository[Employee]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{employees: tenant.NewRepository[Employee](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{employees: r.employees.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.employees.Create(ctx, e)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return r.employees.FindByID(ctx, id)
}

// LockByID reads the employee with a row lock held until the surrounding
// transaction ends.
func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return r.employees.FindByID(ctx, id, func(db *gorm.DB) *gorm.DB {
		return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	})
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Employee, int64, error) {
	where := func(db *gorm.DB) *gorm.DB {
		if filter.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		if filter.ManagerID != nil {
			db = db.Where("manager_id = ?", *filter.ManagerID)
		}
		if s := strings.TrimSpace(filter.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			db = db.Where("LOWER(full_name) LIKE ? OR LOWER(badge_id) LIKE ?", like, like)
		}
		return db
	}

	total, err := r.employees.Count(ctx, where)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.employees.Find(ctx, where, func(db *gorm.DB) *gorm.DB {
		db = db.Order("full_name ASC")
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

func (r *repository) FindEligibleForAccrual(ctx context.Context, joinedOnOrBefore time.Time) ([]Employee, error) {
	return r.employees.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ? AND joined_at <= ?", true, joinedOnOrBefore).Order("joined_at ASC")
	})
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	return r.employees.Count(ctx)
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.employees.Update(ctx, e)
}

func (r *repository) Delete(ctx context.Context, e *Employee) error {
	return r.employees.Delete(ctx, e)
}

func (r *repository) FindByBadgeIDUnscoped(ctx context.Context, badgeID string) (*Employee, error) {
	return r.employees.Unscoped().First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("badge_id = ?", badgeID)
	})
}

func (r *repository) FindByEmailUnscoped(ctx context.Context, email string) (*Employee, error) {
	return r.employees.Unscoped().First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(email) = ?", strings.ToLower(email))
	})
}

func (r *repository) FindByUserIDUnscoped(ctx context.Context, userID uuid.UUID) (*Employee, error) {
	return r.employees.Unscoped().First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}
