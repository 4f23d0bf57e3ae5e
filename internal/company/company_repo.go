package company

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-hrms/internal/tenant"
)

type Repository interface {
	Create(ctx context.Context, company *Company) error
	GetCurrent(ctx context.Context) (*Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	GetByEmailDomain(ctx context.Context, domain string) (*Company, error)
	ListActive(ctx context.Context) ([]Company, error)
	Update(ctx context.Context, company *Company) error
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	companies *tenant.Repository[Company]
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{companies: tenant.NewRepository[Company](db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{companies: r.companies.WithTx(tx)}
}

// Create registers a new tenant. There is no tenant scope yet, so the write
// goes through the unscoped path.
func (r *repository) Create(ctx context.Context, company *Company) error {
	return r.companies.Unscoped().Create(ctx, company)
}

func (r *repository) GetCurrent(ctx context.Context) (*Company, error) {
	return r.companies.First(ctx)
}

// GetByID is a system lookup used before any tenant is known.
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	return r.companies.Unscoped().FindByID(ctx, id)
}

func (r *repository) GetByEmailDomain(ctx context.Context, domain string) (*Company, error) {
	return r.companies.Unscoped().First(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("email_domain = ?", NormalizeDomain(domain))
	})
}

func (r *repository) ListActive(ctx context.Context) ([]Company, error) {
	return r.companies.Unscoped().Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("is_active = ?", true).Order("created_at ASC")
	})
}

func (r *repository) Update(ctx context.Context, company *Company) error {
	return r.companies.Update(ctx, company)
}
