package employee

type CreateEmployeeRequest struct {
	FullName  string `json:"full_name" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email"`
	BadgeID   string `json:"badge_id" binding:"omitempty,max=50"`
	ManagerID string `json:"manager_id" binding:"omitempty,uuid"`
	JoinedAt  string `json:"joined_at" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FullName  string `json:"full_name" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email"`
	ManagerID string `json:"manager_id" binding:"omitempty,uuid"`
	JoinedAt  string `json:"joined_at" binding:"required"`
	IsActive  *bool  `json:"is_active"`
}

type EmployeeResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	BadgeID   string `json:"badge_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	UserID    string `json:"user_id,omitempty"`
	ManagerID string `json:"manager_id,omitempty"`
	JoinedAt  string `json:"joined_at"`
	IsActive  bool   `json:"is_active"`
}

type EmployeeOption struct {
	ID       string `json:"id"`
	BadgeID  string `json:"badge_id"`
	FullName string `json:"full_name"`
}
