package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
	employeeMock "go-hrms/internal/employee/mock"
	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka"
	kafkaMock "go-hrms/internal/messaging/kafka/mock"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/counter"
	counterMock "go-hrms/internal/shared/counter/mock"
	"go-hrms/internal/tenant"
)

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	counter   *counterMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	redismock redismock.ClientMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	counterRepo := counterMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	return &serviceDeps{
		sqlMock:   sqlMock,
		service:   employee.NewService(db, repo, counterRepo, outboxRepo, rdb),
		repo:      repo,
		counter:   counterRepo,
		outbox:    outboxRepo,
		redismock: redisMock,
	}
}

type outboxMatcher struct {
	requestID string
	badgeID   string
}

func (m outboxMatcher) Matches(x any) bool {
	ev, ok := x.(kafka.OutboxEvent)
	if !ok || ev.RequestID != m.requestID || ev.Topic != events.EmployeeCreatedTopic {
		return false
	}
	var payload events.EmployeeCreatedEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return false
	}
	return payload.BadgeID == m.badgeID && payload.EventType == events.EmployeeCreatedType
}

func (m outboxMatcher) String() string {
	return fmt.Sprintf("outbox event with request_id %s and badge %s", m.requestID, m.badgeID)
}

func TestEmployeeService_Create(t *testing.T) {
	companyID := uuid.New()

	t.Run("success - generates badge and queues event", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := tenant.WithCompanyID(contextutil.WithRequestID(context.Background(), "REQ-1"), companyID)

		req := employee.CreateEmployeeRequest{
			FullName: "Asha Rao",
			Email:    "Asha@MyCompany.com",
			JoinedAt: "2026-01-05",
		}

		deps.sqlMock.ExpectBegin()
		deps.counter.EXPECT().WithTx(gomock.Any()).Return(deps.counter)
		deps.counter.EXPECT().
			GetNextValue(ctx, uuid.Nil, counter.TypeEmployeeBadge).
			Return(int64(42), nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, "EMP-000042", e.BadgeID)
				assert.Equal(t, "asha@mycompany.com", e.Email)
				assert.True(t, e.IsActive)
				e.CompanyID = companyID
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(ctx, outboxMatcher{requestID: "REQ-1", badgeID: "EMP-000042"}).
			Return(nil)
		deps.sqlMock.ExpectCommit()
		deps.redismock.ExpectDel(employee.GetEmployeeOptionsKey(companyID.String())).SetVal(1)

		resp, err := deps.service.Create(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "EMP-000042", resp.BadgeID)
		assert.Equal(t, "2026-01-05", resp.JoinedAt)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("explicit badge skips the counter", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := tenant.WithCompanyID(context.Background(), companyID)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.sqlMock.ExpectCommit()
		deps.redismock.ExpectDel(employee.GetEmployeeOptionsKey(companyID.String())).SetVal(1)

		resp, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			FullName: "Ben",
			Email:    "ben@mycompany.com",
			BadgeID:  "B-7",
			JoinedAt: "2026-01-05",
		})

		assert.NoError(t, err)
		assert.Equal(t, "B-7", resp.BadgeID)
	})

	t.Run("duplicate email rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := tenant.WithCompanyID(context.Background(), companyID)

		deps.sqlMock.ExpectBegin()
		deps.counter.EXPECT().WithTx(gomock.Any()).Return(deps.counter)
		deps.counter.EXPECT().GetNextValue(ctx, uuid.Nil, counter.TypeEmployeeBadge).Return(int64(1), nil)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(gorm.ErrDuplicatedKey)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			FullName: "Dup",
			Email:    "dup@mycompany.com",
			JoinedAt: "2026-01-05",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("manager from another company", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := tenant.WithCompanyID(context.Background(), companyID)
		managerID := uuid.New()

		deps.repo.EXPECT().FindByID(ctx, managerID).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			FullName:  "Cara",
			Email:     "cara@mycompany.com",
			ManagerID: managerID.String(),
			JoinedAt:  "2026-01-05",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrManagerNotFound)
	})

	t.Run("invalid joined_at", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := tenant.WithCompanyID(context.Background(), companyID)

		_, err := deps.service.Create(ctx, employee.CreateEmployeeRequest{
			FullName: "Dee",
			Email:    "dee@mycompany.com",
			JoinedAt: "05/01/2026",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidJoinDate)
	})

	t.Run("no tenant", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(context.Background(), employee.CreateEmployeeRequest{})

		assert.ErrorIs(t, err, tenant.ErrContextMissing)
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := tenant.WithCompanyID(context.Background(), uuid.New())

	t.Run("invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(ctx, "nope")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, id.String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	companyID := uuid.New()
	ctx := tenant.WithCompanyID(context.Background(), companyID)

	t.Run("success invalidates cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		existing := &employee.Employee{ID: id, CompanyID: companyID, BadgeID: "EMP-000001", IsActive: true}

		deps.repo.EXPECT().FindByID(ctx, id).Return(existing, nil)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e *employee.Employee) error {
				assert.Equal(t, "New Name", e.FullName)
				assert.False(t, e.IsActive)
				return nil
			})
		deps.redismock.ExpectDel(employee.GetEmployeeOptionsKey(companyID.String())).SetVal(1)

		inactive := false
		resp, err := deps.service.Update(ctx, id.String(), employee.UpdateEmployeeRequest{
			FullName: "New Name",
			Email:    "new@mycompany.com",
			JoinedAt: "2025-03-01",
			IsActive: &inactive,
		})

		assert.NoError(t, err)
		assert.Equal(t, "New Name", resp.FullName)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("repo error", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.repo.EXPECT().FindByID(ctx, id).Return(&employee.Employee{ID: id}, nil)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(errors.New("db down"))

		_, err := deps.service.Update(ctx, id.String(), employee.UpdateEmployeeRequest{
			FullName: "X",
			Email:    "x@mycompany.com",
			JoinedAt: "2025-03-01",
		})

		assert.EqualError(t, err, "db down")
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	companyID := uuid.New()
	ctx := tenant.WithCompanyID(context.Background(), companyID)
	deps := setupServiceTest(t)
	id := uuid.New()
	existing := &employee.Employee{ID: id, CompanyID: companyID}

	deps.repo.EXPECT().FindByID(ctx, id).Return(existing, nil)
	deps.repo.EXPECT().Delete(ctx, existing).Return(nil)
	deps.redismock.ExpectDel(employee.GetEmployeeOptionsKey(companyID.String())).SetVal(1)

	assert.NoError(t, deps.service.Delete(ctx, id.String()))
}

func TestEmployeeService_GetOptions(t *testing.T) {
	companyID := uuid.New()
	ctx := tenant.WithCompanyID(context.Background(), companyID)
	key := employee.GetEmployeeOptionsKey(companyID.String())

	t.Run("cache hit", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(key).SetVal(`[{"id":"1","badge_id":"EMP-000001","full_name":"Asha"}]`)

		resp, err := deps.service.GetOptions(ctx)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Asha", resp[0].FullName)
	})

	t.Run("cache miss loads active employees", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.New()
		deps.redismock.ExpectGet(key).RedisNil()
		deps.repo.EXPECT().
			FindAll(ctx, employee.ListFilter{ActiveOnly: true}).
			Return([]employee.Employee{{ID: id, BadgeID: "EMP-000009", FullName: "Ben"}}, int64(1), nil)
		deps.redismock.Regexp().ExpectSet(key, `.*`, time.Hour).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx)

		assert.NoError(t, err)
		assert.Equal(t, []employee.EmployeeOption{{ID: id.String(), BadgeID: "EMP-000009", FullName: "Ben"}}, resp)
	})
}
