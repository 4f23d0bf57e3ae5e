package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-hrms/internal/tenant"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Lookups used while resolving credentials, before a tenant is known.
	FindByUsernameUnscoped(ctx context.Context, username string) (*User, error)
	FindByEmailUnscoped(ctx context.Context, email string) (*User, error)
	FindByEmployeeIDUnscoped(ctx context.Context, employeeID uuid.UUID) (*User, error)

	RecordAttempt(ctx context.Context, attempt *LoginAttempt) error
	ListAttempts(ctx context.Context, limit int) ([]LoginAttempt, error)
}

type repository struct {
	users    *tenant.Repository[User]
	attempts *tenant.Repository[LoginAttempt]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		users:    tenant.NewRepository[User](db),
		attempts: tenant.NewRepository[LoginAttempt](db),
	}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{users: r.users.WithTx(tx), attempts: r.attempts.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	return r.users.Create(ctx, user)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.users.FindByID(ctx, id)
}

func (r *repository) FindByUsernameUnscoped(ctx context.Context, username string) (*User, error) {
	return r.users.Unscoped().First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(username) = ?", strings.ToLower(username))
	})
}

func (r *repository) FindByEmailUnscoped(ctx context.Context, email string) (*User, error) {
	return r.users.Unscoped().First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(email) = ?", strings.ToLower(email))
	})
}

func (r *repository) FindByEmployeeIDUnscoped(ctx context.Context, employeeID uuid.UUID) (*User, error) {
	return r.users.Unscoped().First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("employee_id = ?", employeeID)
	})
}

func (r *repository) RecordAttempt(ctx context.Context, attempt *LoginAttempt) error {
	return r.attempts.Unscoped().Create(ctx, attempt)
}

func (r *repository) ListAttempts(ctx context.Context, limit int) ([]LoginAttempt, error) {
	return r.attempts.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Limit(limit)
	})
}
