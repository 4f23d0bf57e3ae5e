package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-hrms/internal/tenant"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	EmployeeID   *uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	Username     string         `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email        string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	Role         string         `gorm:"type:varchar(50);not null"`
	IsActive     bool           `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (User) TenantColumn() string {
	return tenant.DefaultColumn
}

func (u *User) OwnerCompanyID() uuid.UUID {
	return u.CompanyID
}

func (u *User) SetOwnerCompanyID(id uuid.UUID) {
	u.CompanyID = id
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" || strings.Contains(u.Username, "@") {
		return errors.New("username must be non-empty and must not contain @")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

const (
	OutcomeSuccess = "success"
)

// LoginAttempt is one row of the login audit log. Attempts with an unknown
// identifier have no company, so rows are written unscoped and read back
// through TenantFilter.
type LoginAttempt struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID  *uuid.UUID `gorm:"type:uuid;index"`
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	Identifier string     `gorm:"type:varchar(255);not null"`
	Outcome    string     `gorm:"type:varchar(50);not null"`
	IPAddress  string     `gorm:"type:varchar(64)"`
	UserAgent  string     `gorm:"type:varchar(512)"`
	CreatedAt  time.Time  `gorm:"not null;index"`
}

func (LoginAttempt) TableName() string {
	return "login_attempts"
}

func (LoginAttempt) TenantFilter(companyID uuid.UUID) clause.Expression {
	return tenant.ColumnFilter(tenant.DefaultColumn, companyID)
}

func (a *LoginAttempt) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
