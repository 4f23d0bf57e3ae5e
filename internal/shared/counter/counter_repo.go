package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeEmployeeBadge = "employee_badge"
)

// Counter is the backing row for one sequence.
type Counter struct {
	CompanyID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CounterType string    `gorm:"type:varchar(50);primaryKey"`
	LastValue   int64     `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Counter) TableName() string {
	return "company_counters"
}

//go:generate mockgen -source=counter_repo.go -destination=mock/counter_repo_mock.go -package=mock

// Repository hands out per-company monotonic sequence values.
type Repository interface {
	GetNextValue(ctx context.Context, companyID uuid.UUID, counterType string) (int64, error)
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetNextValue(ctx context.Context, companyID uuid.UUID, counterType string) (int64, error) {
	var next int64

	// single statement upsert, safe under concurrent callers
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO company_counters (company_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (company_id, counter_type) DO UPDATE
		SET last_value = company_counters.last_value + 1, updated_at = excluded.updated_at
		RETURNING last_value
	`, companyID, counterType, time.Now().UTC()).Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("next %s value: %w", counterType, err)
	}

	return next, nil
}
