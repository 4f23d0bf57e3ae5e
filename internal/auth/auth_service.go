package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/company"
	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/metrics"
	"go-hrms/internal/rbac"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/tenant"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, req LoginRequest, meta ClientMeta) (TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error)
	GetMe(ctx context.Context, userID string) (AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	CreateAdmin(ctx context.Context, username, email, password string) (AuthResponse, error)
}

type service struct {
	db        *gorm.DB
	repo      Repository
	resolver  *Resolver
	tokens    *TokenIssuer
	employees employee.Repository
	companies company.Repository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	resolver *Resolver,
	tokens *TokenIssuer,
	employees employee.Repository,
	companies company.Repository,
	m *metrics.Metrics,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		resolver:  resolver,
		tokens:    tokens,
		employees: employees,
		companies: companies,
		metrics:   m,
		logger:    l,
	}
}

func (s *service) Login(ctx context.Context, req LoginRequest, meta ClientMeta) (TokenResponse, error) {
	seeded, id, err := s.resolver.Authenticate(ctx, req.Identifier, req.Password)

	attempt := &LoginAttempt{
		Identifier: strings.TrimSpace(req.Identifier),
		Outcome:    OutcomeSuccess,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	var fe *FailureError
	switch {
	case errors.As(err, &fe):
		attempt.Outcome = string(fe.Kind)
		if fe.UserID != uuid.Nil {
			attempt.UserID = &fe.UserID
			attempt.CompanyID = &fe.CompanyID
		}
	case err != nil:
		s.logger.Error("login lookup failed", zap.Error(err))
		return TokenResponse{}, err
	default:
		attempt.UserID = &id.UserID
		attempt.CompanyID = &id.CompanyID
	}

	if recErr := s.repo.RecordAttempt(seeded, attempt); recErr != nil {
		s.logger.Error("record login attempt failed", zap.Error(recErr))
	}
	s.metrics.ObserveLogin(attempt.Outcome)

	if err != nil {
		s.logger.Info("login refused",
			zap.String("request_id", contextutil.GetRequestID(ctx)),
			zap.String("outcome", attempt.Outcome),
		)
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	access, refresh, err := s.tokens.Issue(id)
	if err != nil {
		s.logger.Error("login token generation failed", zap.Error(err))
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success",
		zap.String("user_id", id.UserID.String()),
		zap.String("company_id", id.CompanyID.String()),
	)
	return TokenResponse{User: identityResponse(id), AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (TokenResponse, error) {
	rawUserID, rawCompanyID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return TokenResponse{}, err
	}
	userID, err1 := uuid.Parse(rawUserID)
	companyID, err2 := uuid.Parse(rawCompanyID)
	if err1 != nil || err2 != nil {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	user, err := s.repo.GetByID(tenant.WithCompanyID(ctx, companyID), userID)
	if err != nil || !user.IsActive {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	id := userIdentity(user)
	access, refresh, err := s.tokens.Issue(id)
	if err != nil {
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}
	return TokenResponse{User: identityResponse(id), AccessToken: access, RefreshToken: refresh}, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidUserID
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return AuthResponse{}, mapRepositoryError(err)
	}
	return identityResponse(userIdentity(u)), nil
}

// Register gives an employee of the active company a login. The user's
// email is the employee's, so it always sits on the company domain.
func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AuthResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		role = rbac.RoleEmployee
	}
	if !rbac.ValidRole(role) {
		return AuthResponse{}, autherrors.ErrInvalidRole
	}

	emp, err := s.employees.FindByID(ctx, employeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, employeeerrors.ErrEmployeeNotFound
	}
	if err != nil {
		return AuthResponse{}, err
	}
	if emp.UserID != nil {
		return AuthResponse{}, autherrors.ErrEmployeeAlreadyLinked
	}

	user := &User{
		ID:         uuid.New(),
		EmployeeID: &emp.ID,
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.ToLower(emp.Email),
		Role:       role,
		IsActive:   true,
	}
	if err := s.createUser(ctx, user, req.Password, func(tx *gorm.DB) error {
		emp.UserID = &user.ID
		return s.employees.WithTx(tx).Update(ctx, emp)
	}); err != nil {
		return AuthResponse{}, err
	}

	s.logger.Info("register user success",
		zap.String("user_id", user.ID.String()),
		zap.String("employee_id", emp.ID.String()),
		zap.String("role", role),
	)
	return identityResponse(userIdentity(user)), nil
}

// CreateAdmin provisions an ADMIN login without an employee record for the
// active company, used when a company is first set up.
func (s *service) CreateAdmin(ctx context.Context, username, email, password string) (AuthResponse, error) {
	user := &User{
		ID:       uuid.New(),
		Username: strings.TrimSpace(username),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Role:     rbac.RoleAdmin,
		IsActive: true,
	}
	if err := s.createUser(ctx, user, password, nil); err != nil {
		return AuthResponse{}, err
	}
	return identityResponse(userIdentity(user)), nil
}

func (s *service) createUser(ctx context.Context, user *User, password string, also func(tx *gorm.DB) error) error {
	comp, err := s.companies.GetCurrent(ctx)
	if err != nil {
		return err
	}
	if company.DomainOf(user.Email) != comp.EmailDomain {
		return autherrors.ErrEmailDomainMismatch
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, user); err != nil {
			return mapRepositoryError(err)
		}
		if also != nil {
			return also(tx)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create user failed", zap.String("username", user.Username), zap.Error(err))
	}
	return err
}

func userIdentity(u *User) Identity {
	return Identity{
		UserID:     u.ID,
		CompanyID:  u.CompanyID,
		EmployeeID: u.EmployeeID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
	}
}

func identityResponse(id Identity) AuthResponse {
	resp := AuthResponse{
		ID:        id.UserID.String(),
		CompanyID: id.CompanyID.String(),
		Username:  id.Username,
		Email:     id.Email,
		Role:      id.Role,
	}
	if id.EmployeeID != nil {
		resp.EmployeeID = id.EmployeeID.String()
	}
	return resp
}
