package leave

type SubmitLeaveRequest struct {
	LeaveType   string `json:"leave_type" binding:"required,oneof=CL SL EL WFH COMP_OFF LOP"`
	StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Duration    string `json:"duration" binding:"omitempty,oneof=FULL_DAY FIRST_HALF SECOND_HALF"`
	Reason      string `json:"reason" binding:"max=1000"`
	IsEmergency bool   `json:"is_emergency"`
}

type DecisionRequest struct {
	Comments string `json:"comments" binding:"max=1000"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Duration        string  `json:"duration"`
	RequestedDays   string  `json:"requested_days"`
	Reason          string  `json:"reason"`
	IsEmergency     bool    `json:"is_emergency"`
	Status          string  `json:"status"`
	ManagerID       *string `json:"manager_id,omitempty"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	ManagerComments string  `json:"manager_comments,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	CancelledAt     *string `json:"cancelled_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type BalanceResponse struct {
	LeaveType     string `json:"leave_type"`
	Year          int    `json:"year"`
	TotalAccrued  string `json:"total_accrued"`
	UsedDays      string `json:"used_days"`
	AvailableDays string `json:"available_days"`
}

type CreateHolidayRequest struct {
	Name      string `json:"name" binding:"required,max=150"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type HolidayResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Shared    bool   `json:"shared"`
}
