package app

import (
	"fmt"

	"go-hrms/internal/accrual"
	"go-hrms/internal/auth"
	"go-hrms/internal/company"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/notification"
	"go-hrms/internal/rbac"
	"go-hrms/internal/rbac/infra"
	"go-hrms/internal/shared/counter"
)

// Modules are the wired services shared by the API, the workers and the CLI.
type Modules struct {
	RBAC      rbac.Service
	Auth      auth.Service
	Companies company.Service
	Employees employee.Service
	Leave     leave.Service
	Holidays  leave.HolidayService
	Accrual   accrual.Service

	CompanyRepo company.Repository
	Outbox      kafka.OutboxRepository
}

func (a *App) Modules() (*Modules, error) {
	log := a.Logger
	cfg := a.Config

	// --- Repositories ---
	companyRepo := company.NewRepository(a.DB)
	employeeRepo := employee.NewRepository(a.DB)
	authRepo := auth.NewRepository(a.DB)
	counterRepo := counter.NewRepository(a.DB)
	leaveRepo := leave.NewRepository(a.DB)
	holidayRepo := leave.NewHolidayRepository(a.DB)
	balances := leave.NewBalanceStore(a.DB)
	markers := accrual.NewMarkerRepository(a.DB)
	outboxRepo := kafka.NewOutboxRepository(a.SQL)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("build enforcer: %w", err)
	}
	rbacService, err := rbac.NewService(enforcer, log)
	if err != nil {
		return nil, fmt.Errorf("load rbac policies: %w", err)
	}

	// --- Services ---
	employeeService := employee.NewService(a.DB, employeeRepo, counterRepo, outboxRepo, a.Redis, log)
	companyService := company.NewService(companyRepo, employeeService, a.Redis, log)
	domains := company.NewDomainLookup(companyRepo, a.Redis, log)
	resolver := auth.NewResolver(authRepo, employeeRepo, companyRepo, domains, log)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authService := auth.NewService(a.DB, authRepo, resolver, tokens, employeeRepo, companyRepo, a.Metrics, log)

	notifier := notification.NewOutboxNotifier(outboxRepo, cfg.Kafka.NotificationTopic, log)
	leaveService := leave.NewService(
		a.DB, leaveRepo, balances, holidayRepo, employeeRepo, companyRepo,
		notifier, a.Metrics,
		leave.Options{MinNoticeDays: cfg.Leave.MinNoticeDays},
		log,
	)
	holidayService := leave.NewHolidayService(holidayRepo, log)

	amounts, err := accrual.AmountsFromConfig(cfg.Leave)
	if err != nil {
		return nil, err
	}
	accrualService := accrual.NewService(a.DB, companyRepo, employeeRepo, markers, balances, amounts, a.Metrics, log)

	return &Modules{
		RBAC:        rbacService,
		Auth:        authService,
		Companies:   companyService,
		Employees:   employeeService,
		Leave:       leaveService,
		Holidays:    holidayService,
		Accrual:     accrualService,
		CompanyRepo: companyRepo,
		Outbox:      outboxRepo,
	}, nil
}
