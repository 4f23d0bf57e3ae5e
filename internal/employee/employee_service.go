package employee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/counter"
	"go-hrms/internal/shared/dateutil"
	"go-hrms/internal/tenant"
)

const EmployeeOptionsKeyPrefix = "employees:options:"

func GetEmployeeOptionsKey(companyID string) string {
	return EmployeeOptionsKeyPrefix + companyID
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, filter ListFilter) ([]EmployeeResponse, int64, error)
	GetOptions(ctx context.Context) ([]EmployeeOption, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
	CountEmployees(ctx context.Context) (int64, error)
}

type service struct {
	db      *gorm.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

// NewService wires the employee directory. outbox and rdb are optional.
func NewService(
	db *gorm.DB,
	repo Repository,
	counter counter.Repository,
	outbox kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counter,
		outbox:  outbox,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return EmployeeResponse{}, err
	}
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID.String()),
		zap.String("email", req.Email),
	)

	joinedAt, err := dateutil.Parse(req.JoinedAt)
	if err != nil {
		s.logger.Warn("create employee invalid joined_at", zap.String("joined_at", req.JoinedAt))
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoinDate
	}

	managerID, err := s.resolveManager(ctx, req.ManagerID)
	if err != nil {
		return EmployeeResponse{}, err
	}

	empl := &Employee{
		ID:        uuid.New(),
		BadgeID:   strings.TrimSpace(req.BadgeID),
		FullName:  strings.TrimSpace(req.FullName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		ManagerID: managerID,
		JoinedAt:  joinedAt,
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if empl.BadgeID == "" {
			// badges are resolved before a tenant is known, so the sequence is global
			next, err := s.counter.WithTx(tx).GetNextValue(ctx, uuid.Nil, counter.TypeEmployeeBadge)
			if err != nil {
				return err
			}
			empl.BadgeID = fmt.Sprintf("EMP-%06d", next)
		}

		if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
			return mapRepositoryError(err)
		}

		if s.outbox == nil {
			return nil
		}
		payload, err := json.Marshal(events.EmployeeCreatedEvent{
			EventType:  events.EmployeeCreatedType,
			RequestID:  rid,
			EmployeeID: empl.ID.String(),
			CompanyID:  companyID.String(),
			BadgeID:    empl.BadgeID,
			JoinedAt:   dateutil.Format(empl.JoinedAt),
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			CompanyID:     companyID.String(),
			AggregateType: "employee",
			AggregateID:   empl.ID.String(),
			EventType:     events.EmployeeCreatedType,
			Topic:         events.EmployeeCreatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
	})
	if err != nil {
		s.logger.Error("create employee failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptions(ctx, companyID)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("badge_id", empl.BadgeID),
	)
	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]EmployeeResponse, int64, error) {
	rows, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, 0, mapRepositoryError(err)
	}
	return mapToListResponse(rows), total, nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOption, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	cacheKey := GetEmployeeOptionsKey(companyID.String())

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []EmployeeOption
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		rows, _, err := s.repo.FindAll(ctx, ListFilter{ActiveOnly: true})
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOption, len(rows))
		for i, e := range rows {
			resp[i] = EmployeeOption{ID: e.ID.String(), BadgeID: e.BadgeID, FullName: e.FullName}
		}

		if s.rdb != nil {
			if data, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, data, time.Hour)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]EmployeeOption), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	employeeID, err := uuid.Parse(id)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested", zap.String("employee_id", id))

	employeeID, err := uuid.Parse(id)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	joinedAt, err := dateutil.Parse(req.JoinedAt)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidJoinDate
	}
	managerID, err := s.resolveManager(ctx, req.ManagerID)
	if err != nil {
		return EmployeeResponse{}, err
	}

	empl, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	empl.FullName = strings.TrimSpace(req.FullName)
	empl.Email = strings.ToLower(strings.TrimSpace(req.Email))
	empl.ManagerID = managerID
	empl.JoinedAt = joinedAt
	if req.IsActive != nil {
		empl.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.invalidateOptions(ctx, empl.CompanyID)
	s.logger.Info("update employee success", zap.String("employee_id", id))
	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	employeeID, err := uuid.Parse(id)
	if err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.repo.Delete(ctx, empl); err != nil {
		s.logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidateOptions(ctx, empl.CompanyID)
	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) CountEmployees(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// resolveManager only accepts managers visible in the active company.
func (s *service) resolveManager(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, employeeerrors.ErrManagerNotFound
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrManagerNotFound
		}
		return nil, err
	}
	return &id, nil
}

func (s *service) invalidateOptions(ctx context.Context, companyID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	cacheKey := GetEmployeeOptionsKey(companyID.String())
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate employee options cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:        empl.ID.String(),
		CompanyID: empl.CompanyID.String(),
		BadgeID:   empl.BadgeID,
		FullName:  empl.FullName,
		Email:     empl.Email,
		UserID:    uuidToString(empl.UserID),
		ManagerID: uuidToString(empl.ManagerID),
		JoinedAt:  dateutil.Format(empl.JoinedAt),
		IsActive:  empl.IsActive,
	}
}

func mapToListResponse(rows []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(rows))
	for i, e := range rows {
		res[i] = mapToResponse(e)
	}
	return res
}

func uuidToString(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}
