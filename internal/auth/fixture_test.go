package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-hrms/internal/auth"
	"go-hrms/internal/company"
	"go-hrms/internal/employee"
	"go-hrms/internal/shared/testdb"
	"go-hrms/internal/tenant"
)

const password = "secret123"

type fakeLookup struct {
	fn func(ctx context.Context, domain string) (*company.Company, error)
}

func (f fakeLookup) FindByEmailDomain(ctx context.Context, domain string) (*company.Company, error) {
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(ctx, domain)
}

type fixture struct {
	db        *gorm.DB
	users     auth.Repository
	employees employee.Repository
	companies company.Repository

	myCo, otherCo *company.Company
	alice         *auth.User
	aliceEmp      *employee.Employee
	admin         *auth.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t, &company.Company{}, &employee.Employee{}, &auth.User{}, &auth.LoginAttempt{})
	f := &fixture{
		db:        db,
		users:     auth.NewRepository(db),
		employees: employee.NewRepository(db),
		companies: company.NewRepository(db),
	}
	ctx := context.Background()

	f.myCo = &company.Company{Name: "MyCo", EmailDomain: "mycompany.com", Timezone: "UTC", IsActive: true}
	require.NoError(t, f.companies.Create(ctx, f.myCo))
	f.otherCo = &company.Company{Name: "OtherCo", EmailDomain: "otherco.com", Timezone: "UTC", IsActive: true}
	require.NoError(t, f.companies.Create(ctx, f.otherCo))

	myCtx := tenant.WithCompanyID(ctx, f.myCo.ID)
	f.aliceEmp = &employee.Employee{
		BadgeID:  "EMP-000001",
		FullName: "Alice",
		Email:    "alice@mycompany.com",
		JoinedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive: true,
	}
	require.NoError(t, f.employees.Create(myCtx, f.aliceEmp))

	f.alice = f.seedUser(t, f.myCo.ID, "alice", "alice@mycompany.com", &f.aliceEmp.ID, true)
	// a principal whose email sits on another company's domain
	f.admin = f.seedUser(t, f.myCo.ID, "admin", "admin@otherco.com", nil, true)
	return f
}

func (f *fixture) seedUser(t *testing.T, companyID uuid.UUID, username, email string, employeeID *uuid.UUID, active bool) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &auth.User{
		EmployeeID:   employeeID,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "EMPLOYEE",
		IsActive:     active,
	}
	require.NoError(t, f.users.Create(tenant.WithCompanyID(context.Background(), companyID), u))
	return u
}

func (f *fixture) resolver(lookup company.DomainLookup) *auth.Resolver {
	return auth.NewResolver(f.users, f.employees, f.companies, lookup)
}
