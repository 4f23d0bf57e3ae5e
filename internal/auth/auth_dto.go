package auth

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required,max=255"`
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterRequest creates a login for an existing employee of the caller's
// company.
type RegisterRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Username   string `json:"username" binding:"required,min=3,max=100,excludes=@"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"omitempty,oneof=EMPLOYEE MANAGER HR ADMIN"`
}

// ClientMeta is recorded with every login attempt.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

type AuthResponse struct {
	ID         string `json:"id"`
	CompanyID  string `json:"company_id"`
	EmployeeID string `json:"employee_id,omitempty"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

type TokenResponse struct {
	User         AuthResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}
