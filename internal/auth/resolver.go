package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/company"
	"go-hrms/internal/employee"
	"go-hrms/internal/tenant"
)

type FailureKind string

const (
	FailureUnknownIdentifier FailureKind = "unknown_identifier"
	FailureBadSecret         FailureKind = "bad_secret"
	FailureTenantMismatch    FailureKind = "tenant_mismatch"
	FailureInactive          FailureKind = "inactive"
	FailureNoTenant          FailureKind = "no_tenant"
)

// FailureError carries the precise reason a credential was refused. It
// unwraps to autherrors.ErrInvalidCredentials so clients only ever see the
// generic error.
type FailureError struct {
	Kind       FailureKind
	Identifier string
	UserID     uuid.UUID
	CompanyID  uuid.UUID
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Kind)
}

func (e *FailureError) Unwrap() error {
	return autherrors.ErrInvalidCredentials
}

// KindOf extracts the failure kind from err, if it is an authentication
// failure.
func KindOf(err error) (FailureKind, bool) {
	var fe *FailureError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

type Identity struct {
	UserID     uuid.UUID
	CompanyID  uuid.UUID
	EmployeeID *uuid.UUID
	Username   string
	Email      string
	Role       string
}

type EmployeeFinder interface {
	FindByBadgeIDUnscoped(ctx context.Context, badgeID string) (*employee.Employee, error)
	FindByEmailUnscoped(ctx context.Context, email string) (*employee.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error)
}

type CompanyFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*company.Company, error)
}

// Resolver maps an identifier and secret to a principal and its company.
type Resolver struct {
	users     Repository
	employees EmployeeFinder
	companies CompanyFinder
	domains   company.DomainLookup
	logger    *zap.Logger
}

func NewResolver(
	users Repository,
	employees EmployeeFinder,
	companies CompanyFinder,
	domains company.DomainLookup,
	logger ...*zap.Logger,
) *Resolver {
	l := zap.L().Named("auth.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.resolver")
	}
	return &Resolver{users: users, employees: employees, companies: companies, domains: domains, logger: l}
}

var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

// Authenticate tries identifier as a badge id, then a username, then (only
// when it contains @) an email; the first match wins. On success the
// returned context carries the principal's company.
func (r *Resolver) Authenticate(ctx context.Context, identifier, secret string) (context.Context, Identity, error) {
	identifier = strings.TrimSpace(identifier)
	isEmail := strings.Contains(identifier, "@")

	user, emp, err := r.lookup(ctx, identifier, isEmail)
	if err != nil {
		return ctx, Identity{}, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(secret))
		return ctx, Identity{}, &FailureError{Kind: FailureUnknownIdentifier, Identifier: identifier}
	}

	fail := func(kind FailureKind) error {
		return &FailureError{Kind: kind, Identifier: identifier, UserID: user.ID, CompanyID: user.CompanyID}
	}

	// the secret is always checked so every path costs one bcrypt compare
	secretOK := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)) == nil

	if emp == nil && user.EmployeeID != nil {
		emp, err = r.employees.FindByID(tenant.WithCompanyID(ctx, user.CompanyID), *user.EmployeeID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx, Identity{}, err
		}
	}
	if emp != nil && emp.CompanyID != user.CompanyID {
		r.securityEvent("principal and employee belong to different companies", identifier, user, "")
		return ctx, Identity{}, fail(FailureTenantMismatch)
	}

	comp, err := r.companies.GetByID(ctx, user.CompanyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ctx, Identity{}, fail(FailureNoTenant)
	}
	if err != nil {
		return ctx, Identity{}, err
	}

	credentialEmail := user.Email
	switch {
	case isEmail:
		credentialEmail = identifier
	case emp != nil:
		credentialEmail = emp.Email
	}
	domain := company.DomainOf(credentialEmail)

	if domain != comp.EmailDomain {
		r.securityEvent("credential email domain does not match company", identifier, user, domain)
		return ctx, Identity{}, fail(FailureTenantMismatch)
	}
	if isEmail && r.domains != nil {
		owner, err := r.domains.FindByEmailDomain(ctx, domain)
		if err != nil {
			return ctx, Identity{}, err
		}
		if owner != nil && owner.ID != comp.ID {
			r.securityEvent("email domain is registered to another company", identifier, user, domain)
			return ctx, Identity{}, fail(FailureTenantMismatch)
		}
	}

	if !secretOK {
		return ctx, Identity{}, fail(FailureBadSecret)
	}
	if !user.IsActive || !comp.IsActive || (emp != nil && !emp.IsActive) {
		return ctx, Identity{}, fail(FailureInactive)
	}

	return tenant.WithCompanyID(ctx, comp.ID), Identity{
		UserID:     user.ID,
		CompanyID:  comp.ID,
		EmployeeID: user.EmployeeID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
	}, nil
}

func (r *Resolver) lookup(ctx context.Context, identifier string, isEmail bool) (*User, *employee.Employee, error) {
	if identifier == "" {
		return nil, nil, nil
	}

	emp, err := r.employees.FindByBadgeIDUnscoped(ctx, identifier)
	if err == nil {
		user, err := r.users.FindByEmployeeIDUnscoped(ctx, emp.ID)
		return found(user, emp, err)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	user, err := r.users.FindByUsernameUnscoped(ctx, identifier)
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return found(user, nil, err)
	}

	if !isEmail {
		return nil, nil, nil
	}

	user, err = r.users.FindByEmailUnscoped(ctx, identifier)
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return found(user, nil, err)
	}

	emp, err = r.employees.FindByEmailUnscoped(ctx, identifier)
	if err != nil {
		return found(nil, nil, err)
	}
	user, err = r.users.FindByEmployeeIDUnscoped(ctx, emp.ID)
	return found(user, emp, err)
}

func found(user *User, emp *employee.Employee, err error) (*User, *employee.Employee, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return user, emp, nil
}

func (r *Resolver) securityEvent(msg, identifier string, user *User, domain string) {
	r.logger.Warn(msg,
		zap.String("event", "auth.tenant_mismatch"),
		zap.String("identifier", identifier),
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", user.CompanyID.String()),
		zap.String("email_domain", domain),
	)
}
