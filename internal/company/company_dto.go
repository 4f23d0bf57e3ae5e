package company

type RegisterCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	EmailDomain string `json:"email_domain" binding:"required"`
	Timezone    string `json:"timezone" binding:"required"`
}

type UpdateCompanyRequest struct {
	Name        string `json:"name"`
	EmailDomain string `json:"email_domain"`
	Timezone    string `json:"timezone"`
	IsActive    *bool  `json:"is_active"`
}

type CompanyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EmailDomain string `json:"email_domain"`
	Timezone    string `json:"timezone"`
	IsActive    bool   `json:"is_active"`
}

func mapToResponse(c *Company) CompanyResponse {
	return CompanyResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		EmailDomain: c.EmailDomain,
		Timezone:    c.Timezone,
		IsActive:    c.IsActive,
	}
}
