package company

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	companyerrors "go-hrms/internal/company/errors"
)

// Company is the root of isolation. Its email domain ties credentials to
// the tenant and its timezone defines "today" for date validation.
type Company struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name        string         `gorm:"type:varchar(150);not null"`
	EmailDomain string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Timezone    string         `gorm:"type:varchar(64);not null"`
	IsActive    bool           `gorm:"not null"`
	CreatedAt   time.Time      `gorm:"not null"`
	UpdatedAt   time.Time      `gorm:"not null"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Company) TableName() string {
	return "companies"
}

// TenantFilter scopes company reads to the caller's own row.
func (Company) TenantFilter(companyID uuid.UUID) clause.Expression {
	return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: companyID}
}

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Company) Validate() error {
	c.EmailDomain = NormalizeDomain(c.EmailDomain)
	if c.EmailDomain == "" || !strings.Contains(c.EmailDomain, ".") {
		return companyerrors.ErrInvalidEmailDomain
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		return companyerrors.ErrInvalidTimezone
	}
	return nil
}

// Location falls back to UTC when the stored zone cannot be loaded.
func (c *Company) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
}

func NormalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
}

// DomainOf returns the lower-cased part after the last "@" of email.
func DomainOf(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return ""
	}
	return NormalizeDomain(email[i+1:])
}
