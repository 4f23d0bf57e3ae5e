package accrual

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-hrms/internal/tenant"
)

//go:generate mockgen -source=accrual_repo.go -destination=mock/accrual_repo_mock.go -package=mock
type MarkerRepository interface {
	WithTx(tx *gorm.DB) MarkerRepository
	// Mark inserts the marker and reports false when the period was
	// already recorded for the employee and type.
	Mark(ctx context.Context, m *Marker) (bool, error)
	Exists(ctx context.Context, employeeID uuid.UUID, leaveType string, period Period) (bool, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Marker, error)
}

type markerRepository struct {
	markers *tenant.Repository[Marker]
}

func NewMarkerRepository(db *gorm.DB) MarkerRepository {
	return &markerRepository{markers: tenant.NewRepository[Marker](db)}
}

func (r *markerRepository) WithTx(tx *gorm.DB) MarkerRepository {
	return &markerRepository{markers: r.markers.WithTx(tx)}
}

func (r *markerRepository) Mark(ctx context.Context, m *Marker) (bool, error) {
	return r.markers.CreateIfAbsent(ctx, m)
}

func (r *markerRepository) Exists(ctx context.Context, employeeID uuid.UUID, leaveType string, period Period) (bool, error) {
	n, err := r.markers.Count(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("employee_id = ? AND leave_type = ? AND period = ?", employeeID, leaveType, period.Key())
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *markerRepository) ListByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Marker, error) {
	return r.markers.Find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("employee_id = ?", employeeID).Order("period ASC, leave_type ASC")
	})
}
