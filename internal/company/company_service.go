package company

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	companyerrors "go-hrms/internal/company/errors"
	"go-hrms/internal/shared/contextutil"
)

// EmployeeCounter reports how many employees the active company has.
type EmployeeCounter interface {
	CountEmployees(ctx context.Context) (int64, error)
}

type Service interface {
	Register(ctx context.Context, req RegisterCompanyRequest) (CompanyResponse, error)
	GetCurrent(ctx context.Context) (CompanyResponse, error)
	UpdateCurrent(ctx context.Context, req UpdateCompanyRequest) (CompanyResponse, error)
}

type service struct {
	repo      Repository
	employees EmployeeCounter
	rdb       *redis.Client
	logger    *zap.Logger
}

func NewService(repo Repository, employees EmployeeCounter, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("company.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.service")
	}
	return &service{repo: repo, employees: employees, rdb: rdb, logger: l}
}

func (s *service) Register(ctx context.Context, req RegisterCompanyRequest) (CompanyResponse, error) {
	s.logger.Debug("register company requested",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("email_domain", req.EmailDomain),
	)

	c := &Company{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		EmailDomain: NormalizeDomain(req.EmailDomain),
		Timezone:    req.Timezone,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("register company persist failed", zap.Error(err))
		return CompanyResponse{}, mapRepositoryError(err)
	}

	s.invalidate(ctx, c.EmailDomain)
	s.logger.Info("register company success", zap.String("company_id", c.ID.String()))
	return mapToResponse(c), nil
}

func (s *service) GetCurrent(ctx context.Context) (CompanyResponse, error) {
	c, err := s.repo.GetCurrent(ctx)
	if err != nil {
		return CompanyResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(c), nil
}

func (s *service) UpdateCurrent(ctx context.Context, req UpdateCompanyRequest) (CompanyResponse, error) {
	c, err := s.repo.GetCurrent(ctx)
	if err != nil {
		s.logger.Error("update company fetch failed", zap.Error(err))
		return CompanyResponse{}, mapRepositoryError(err)
	}
	oldDomain := c.EmailDomain

	domain := NormalizeDomain(req.EmailDomain)
	settingsChanged := (domain != "" && domain != c.EmailDomain) ||
		(req.Timezone != "" && req.Timezone != c.Timezone)
	if settingsChanged && s.employees != nil {
		n, err := s.employees.CountEmployees(ctx)
		if err != nil {
			return CompanyResponse{}, err
		}
		if n > 0 {
			s.logger.Warn("update company settings locked",
				zap.String("company_id", c.ID.String()),
				zap.Int64("employees", n),
			)
			return CompanyResponse{}, companyerrors.ErrSettingsLocked
		}
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
	}
	if domain != "" {
		c.EmailDomain = domain
	}
	if req.Timezone != "" {
		c.Timezone = req.Timezone
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.Error("update company persist failed", zap.Error(err))
		return CompanyResponse{}, mapRepositoryError(err)
	}

	s.invalidate(ctx, oldDomain)
	if c.EmailDomain != oldDomain {
		s.invalidate(ctx, c.EmailDomain)
	}
	s.logger.Info("update company success", zap.String("company_id", c.ID.String()))
	return mapToResponse(c), nil
}

func (s *service) invalidate(ctx context.Context, domain string) {
	if s.rdb == nil {
		return
	}
	key := GetDomainKey(domain)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.logger.Error("failed to invalidate company domain cache", zap.String("key", key), zap.Error(err))
	}
}
