package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"go-hrms/internal/auth"
	"go-hrms/internal/company"
	"go-hrms/internal/tenant"
)

type ProvisionRequest struct {
	Name          string
	EmailDomain   string
	Timezone      string
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

type ProvisionResult struct {
	Company company.CompanyResponse `json:"company"`
	Admin   auth.AuthResponse       `json:"admin"`
}

// Provision registers a company and its first ADMIN login. The admin email
// must be on the company's domain.
func (m *Modules) Provision(ctx context.Context, req ProvisionRequest) (ProvisionResult, error) {
	comp, err := m.Companies.Register(ctx, company.RegisterCompanyRequest{
		Name:        req.Name,
		EmailDomain: req.EmailDomain,
		Timezone:    req.Timezone,
	})
	if err != nil {
		return ProvisionResult{}, fmt.Errorf("register company: %w", err)
	}

	companyID, err := uuid.Parse(comp.ID)
	if err != nil {
		return ProvisionResult{}, err
	}

	admin, err := m.Auth.CreateAdmin(tenant.WithCompanyID(ctx, companyID), req.AdminUsername, req.AdminEmail, req.AdminPassword)
	if err != nil {
		return ProvisionResult{Company: comp}, fmt.Errorf("create admin: %w", err)
	}
	return ProvisionResult{Company: comp, Admin: admin}, nil
}
