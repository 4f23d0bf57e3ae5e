package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/tenant"
)

type Employee struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserID    *uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	BadgeID   string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	FullName  string         `gorm:"type:varchar(255);not null"`
	Email     string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	ManagerID *uuid.UUID     `gorm:"type:uuid;index"`
	JoinedAt  time.Time      `gorm:"type:date;not null"`
	IsActive  bool           `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}

func (Employee) TenantColumn() string {
	return tenant.DefaultColumn
}

func (e *Employee) OwnerCompanyID() uuid.UUID {
	return e.CompanyID
}

func (e *Employee) SetOwnerCompanyID(id uuid.UUID) {
	e.CompanyID = id
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Employee) Validate() error {
	if e.ManagerID != nil && *e.ManagerID == e.ID {
		return employeeerrors.ErrSelfManager
	}
	if e.JoinedAt.IsZero() {
		return employeeerrors.ErrInvalidJoinDate
	}
	return nil
}
