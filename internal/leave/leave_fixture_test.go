package leave_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-hrms/internal/company"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/metrics"
	"go-hrms/internal/notification"
	"go-hrms/internal/shared/dateutil"
	"go-hrms/internal/shared/testdb"
	"go-hrms/internal/tenant"
)

// Monday 2 March 2026, 09:00 UTC.
var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
}

type sentNotice struct {
	kind   string
	notice notification.LeaveNotice
}

func (r *recordingNotifier) record(kind string, n notification.LeaveNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotice{kind: kind, notice: n})
	return nil
}

func (r *recordingNotifier) LeaveSubmitted(_ context.Context, n notification.LeaveNotice) error {
	return r.record("submitted", n)
}

func (r *recordingNotifier) LeaveDecided(_ context.Context, n notification.LeaveNotice) error {
	return r.record("decided", n)
}

func (r *recordingNotifier) LeaveCancelled(_ context.Context, n notification.LeaveNotice) error {
	return r.record("cancelled", n)
}

func (r *recordingNotifier) last() sentNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent[len(r.sent)-1]
}

type fixture struct {
	db        *gorm.DB
	repo      leave.Repository
	balances  leave.BalanceStore
	holidays  leave.HolidayRepository
	employees employee.Repository
	notifier  *recordingNotifier
	metrics   *metrics.Metrics
	svc       leave.Service

	ctx      context.Context
	otherCtx context.Context

	manager *employee.Employee
	alice   *employee.Employee
	carol   *employee.Employee
	dave    *employee.Employee // other company
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t,
		&company.Company{},
		&employee.Employee{},
		&leave.LeaveRequest{},
		&leave.LeaveBalance{},
		&leave.Holiday{},
	)

	f := &fixture{
		db:        db,
		repo:      leave.NewRepository(db),
		balances:  leave.NewBalanceStore(db),
		holidays:  leave.NewHolidayRepository(db),
		employees: employee.NewRepository(db),
		notifier:  &recordingNotifier{},
		metrics:   metrics.New(),
	}
	f.svc = f.newService(f.balances)

	companies := company.NewRepository(db)
	myCo := &company.Company{Name: "MyCo", EmailDomain: "mycompany.com", Timezone: "UTC", IsActive: true}
	require.NoError(t, companies.Create(context.Background(), myCo))
	otherCo := &company.Company{Name: "OtherCo", EmailDomain: "otherco.com", Timezone: "UTC", IsActive: true}
	require.NoError(t, companies.Create(context.Background(), otherCo))

	f.ctx = tenant.WithCompanyID(context.Background(), myCo.ID)
	f.otherCtx = tenant.WithCompanyID(context.Background(), otherCo.ID)

	f.manager = f.seedEmployee(t, f.ctx, "EMP-000001", "manager@mycompany.com", nil)
	f.alice = f.seedEmployee(t, f.ctx, "EMP-000002", "alice@mycompany.com", &f.manager.ID)
	f.carol = f.seedEmployee(t, f.ctx, "EMP-000003", "carol@mycompany.com", &f.manager.ID)
	f.dave = f.seedEmployee(t, f.otherCtx, "EMP-000004", "dave@otherco.com", nil)
	return f
}

func (f *fixture) newService(store leave.BalanceStore) leave.Service {
	return leave.NewService(
		f.db,
		f.repo,
		store,
		f.holidays,
		f.employees,
		company.NewRepository(f.db),
		f.notifier,
		f.metrics,
		leave.Options{MinNoticeDays: 2, Now: func() time.Time { return fixedNow }},
	)
}

func (f *fixture) seedEmployee(t *testing.T, ctx context.Context, badge, email string, managerID *uuid.UUID) *employee.Employee {
	t.Helper()
	e := &employee.Employee{
		BadgeID:   badge,
		FullName:  badge,
		Email:     email,
		ManagerID: managerID,
		JoinedAt:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	require.NoError(t, f.employees.Create(ctx, e))
	return e
}

func (f *fixture) accrue(t *testing.T, emp *employee.Employee, leaveType string, days string) {
	t.Helper()
	row, err := f.balances.GetOrCreate(f.ctx, emp.ID, leaveType, 2026)
	require.NoError(t, err)
	require.NoError(t, f.balances.AddAccrual(f.ctx, row, decimal.RequireFromString(days)))
}

func (f *fixture) balance(t *testing.T, emp *employee.Employee, leaveType string) [3]string {
	t.Helper()
	row, err := f.balances.Find(f.ctx, emp.ID, leaveType, 2026)
	require.NoError(t, err)
	return [3]string{row.TotalAccrued.String(), row.UsedDays.String(), row.AvailableDays.String()}
}

func (f *fixture) submit(t *testing.T, emp *employee.Employee, leaveType, start, end string) leave.LeaveResponse {
	t.Helper()
	resp, err := f.svc.Submit(f.ctx, emp.ID.String(), leave.SubmitLeaveRequest{
		LeaveType: leaveType,
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return resp
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := dateutil.Parse(s)
	require.NoError(t, err)
	return d
}
