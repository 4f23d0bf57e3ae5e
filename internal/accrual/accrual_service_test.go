package accrual_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-hrms/internal/accrual"
	accrualerrors "go-hrms/internal/accrual/errors"
	"go-hrms/internal/company"
	"go-hrms/internal/config"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/metrics"
	"go-hrms/internal/shared/testdb"
	"go-hrms/internal/tenant"
)

type fixture struct {
	db        *gorm.DB
	companies company.Repository
	employees employee.Repository
	markers   accrual.MarkerRepository
	balances  leave.BalanceStore
	metrics   *metrics.Metrics

	ctx      context.Context
	otherCtx context.Context
	alice    *employee.Employee
	dave     *employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t,
		&company.Company{},
		&employee.Employee{},
		&leave.LeaveBalance{},
		&accrual.Marker{},
	)
	f := &fixture{
		db:        db,
		companies: company.NewRepository(db),
		employees: employee.NewRepository(db),
		markers:   accrual.NewMarkerRepository(db),
		balances:  leave.NewBalanceStore(db),
		metrics:   metrics.New(),
	}

	bg := context.Background()
	myCo := &company.Company{Name: "MyCo", EmailDomain: "mycompany.com", Timezone: "UTC", IsActive: true}
	otherCo := &company.Company{Name: "OtherCo", EmailDomain: "otherco.com", Timezone: "UTC", IsActive: true}
	dormant := &company.Company{Name: "Dormant", EmailDomain: "dormant.com", Timezone: "UTC", IsActive: false}
	for _, c := range []*company.Company{myCo, otherCo, dormant} {
		require.NoError(t, f.companies.Create(bg, c))
	}
	f.ctx = tenant.WithCompanyID(bg, myCo.ID)
	f.otherCtx = tenant.WithCompanyID(bg, otherCo.ID)

	f.alice = f.seed(t, f.ctx, "EMP-000001", "alice@mycompany.com", "2025-01-06", true)
	f.seed(t, f.ctx, "EMP-000002", "late@mycompany.com", "2026-03-15", true)
	f.seed(t, f.ctx, "EMP-000003", "gone@mycompany.com", "2024-01-01", false)
	f.dave = f.seed(t, f.otherCtx, "EMP-000004", "dave@otherco.com", "2026-03-01", true)
	f.seed(t, tenant.WithCompanyID(bg, dormant.ID), "EMP-000005", "zed@dormant.com", "2024-01-01", true)
	return f
}

func (f *fixture) seed(t *testing.T, ctx context.Context, badge, email, joined string, active bool) *employee.Employee {
	t.Helper()
	joinedAt, err := time.Parse("2006-01-02", joined)
	require.NoError(t, err)
	e := &employee.Employee{BadgeID: badge, FullName: badge, Email: email, JoinedAt: joinedAt, IsActive: active}
	require.NoError(t, f.employees.Create(ctx, e))
	return e
}

func (f *fixture) service(store leave.BalanceStore, amounts map[string]decimal.Decimal) accrual.Service {
	return accrual.NewService(f.db, f.companies, f.employees, f.markers, store, amounts, f.metrics)
}

func (f *fixture) balance(t *testing.T, ctx context.Context, emp *employee.Employee, leaveType string, year int) [3]string {
	t.Helper()
	row, err := f.balances.Find(ctx, emp.ID, leaveType, year)
	require.NoError(t, err)
	return [3]string{row.TotalAccrued.String(), row.UsedDays.String(), row.AvailableDays.String()}
}

func TestAccrualService_RunIsIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := f.service(f.balances, nil)

	got, err := svc.Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, accrual.RunResult{Period: "2026-03", Companies: 2, Employees: 2, Credited: 4}, got)

	assert.Equal(t, [3]string{"1", "0", "1"}, f.balance(t, f.ctx, f.alice, leave.TypeEarned, 2026))
	assert.Equal(t, [3]string{"1", "0", "1"}, f.balance(t, f.ctx, f.alice, leave.TypeSick, 2026))
	assert.Equal(t, [3]string{"0", "0", "0"}, f.balance(t, f.ctx, f.alice, leave.TypeCasual, 2026))
	assert.Equal(t, [3]string{"1", "0", "1"}, f.balance(t, f.otherCtx, f.dave, leave.TypeEarned, 2026))

	rows, err := f.balances.ListByEmployee(f.ctx, f.alice.ID, 2026)
	require.NoError(t, err)
	assert.Len(t, rows, len(leave.BalanceTypes()))

	again, err := svc.Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Credited)
	assert.Equal(t, 4, again.Skipped)
	assert.Equal(t, 2, again.Employees)
	assert.Equal(t, [3]string{"1", "0", "1"}, f.balance(t, f.ctx, f.alice, leave.TypeEarned, 2026))

	markers, err := f.markers.ListByEmployee(f.ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, markers, 2)

	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.AccrualCredits.WithLabelValues(leave.TypeEarned, accrual.OutcomeCredited))+
		testutil.ToFloat64(f.metrics.AccrualCredits.WithLabelValues(leave.TypeSick, accrual.OutcomeCredited)))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.AccrualCredits.WithLabelValues(leave.TypeEarned, accrual.OutcomeSkipped)))
}

func TestAccrualService_SecondPeriodAddsUp(t *testing.T) {
	f := newFixture(t)
	svc := f.service(f.balances, nil)

	_, err := svc.Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	got, err := svc.Run(context.Background(), accrual.RunRequest{Month: 4, Year: 2026})
	require.NoError(t, err)

	// the late joiner becomes eligible in April
	assert.Equal(t, 3, got.Employees)
	assert.Equal(t, 6, got.Credited)
	assert.Equal(t, [3]string{"2", "0", "2"}, f.balance(t, f.ctx, f.alice, leave.TypeEarned, 2026))
}

func TestAccrualService_DryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	svc := f.service(f.balances, nil)

	got, err := svc.Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026, DryRun: true})
	require.NoError(t, err)
	assert.True(t, got.DryRun)
	assert.Equal(t, 4, got.Credited)
	assert.Equal(t, 2, got.Employees)

	var n int64
	require.NoError(t, f.db.Model(&leave.LeaveBalance{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, f.db.Model(&accrual.Marker{}).Count(&n).Error)
	assert.Zero(t, n)

	_, err = svc.Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	dry, err := svc.Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 0, dry.Credited)
	assert.Equal(t, 4, dry.Skipped)
}

func TestAccrualService_InvalidPeriod(t *testing.T) {
	f := newFixture(t)
	svc := f.service(f.balances, nil)

	for _, req := range []accrual.RunRequest{{Month: 0, Year: 2026}, {Month: 13, Year: 2026}, {Month: 1}} {
		_, err := svc.Run(context.Background(), req)
		assert.ErrorIs(t, err, accrualerrors.ErrInvalidPeriod)
	}
}

func TestAccrualService_ConfiguredAmounts(t *testing.T) {
	f := newFixture(t)

	amounts, err := accrual.AmountsFromConfig(config.LeaveOptions{AccrualEL: "1.5", AccrualSL: "0"})
	require.NoError(t, err)
	svc := f.service(f.balances, amounts)

	got, err := svc.Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Credited)
	assert.Equal(t, [3]string{"1.5", "0", "1.5"}, f.balance(t, f.ctx, f.alice, leave.TypeEarned, 2026))
	assert.Equal(t, [3]string{"0", "0", "0"}, f.balance(t, f.ctx, f.alice, leave.TypeSick, 2026))

	_, err = accrual.AmountsFromConfig(config.LeaveOptions{AccrualEL: "0.3"})
	assert.ErrorIs(t, err, accrualerrors.ErrInvalidAmount)
	_, err = accrual.AmountsFromConfig(config.LeaveOptions{AccrualSL: "-1"})
	assert.ErrorIs(t, err, accrualerrors.ErrInvalidAmount)
}

// failingStore refuses credits for one employee.
type failingStore struct {
	leave.BalanceStore
	employeeID uuid.UUID
}

func (s failingStore) WithTx(tx *gorm.DB) leave.BalanceStore {
	return failingStore{BalanceStore: s.BalanceStore.WithTx(tx), employeeID: s.employeeID}
}

func (s failingStore) AddAccrual(ctx context.Context, row *leave.LeaveBalance, days decimal.Decimal) error {
	if row.EmployeeID == s.employeeID {
		return errors.New("disk full")
	}
	return s.BalanceStore.AddAccrual(ctx, row, days)
}

func TestAccrualService_EmployeeFailureIsSkipped(t *testing.T) {
	f := newFixture(t)

	got, err := f.service(failingStore{BalanceStore: f.balances, employeeID: f.alice.ID}, nil).
		Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1, got.Employees)
	assert.Equal(t, 2, got.Credited)

	// the failed credit took its marker with it
	markers, err := f.markers.ListByEmployee(f.ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, markers)

	retry, err := f.service(f.balances, nil).Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, 2, retry.Credited)
	assert.Equal(t, 2, retry.Skipped)
	assert.Equal(t, [3]string{"1", "0", "1"}, f.balance(t, f.ctx, f.alice, leave.TypeEarned, 2026))
}

type brokenCompanies struct{}

func (brokenCompanies) ListActive(context.Context) ([]company.Company, error) {
	return nil, errors.New("connection reset")
}

func TestAccrualService_ListingFailureAborts(t *testing.T) {
	f := newFixture(t)
	svc := accrual.NewService(f.db, brokenCompanies{}, f.employees, f.markers, f.balances, nil, f.metrics)

	_, err := svc.Run(context.Background(), accrual.RunRequest{Month: 3, Year: 2026})
	assert.ErrorContains(t, err, "connection reset")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AccrualRuns.WithLabelValues("error")))
}

func TestPeriod(t *testing.T) {
	p, err := accrual.NewPeriod(2026, 3)
	require.NoError(t, err)
	assert.Equal(t, "2026-03", p.Key())
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), p.Start())

	ist := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, "2026-02", accrual.PeriodOf(time.Date(2026, 3, 1, 2, 0, 0, 0, ist)).Key())
}
