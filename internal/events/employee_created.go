package events

import "time"

const (
	EmployeeCreatedTopic = "hr.employee.lifecycle.v1"
	EmployeeCreatedType  = "employee.created"
)

type EmployeeCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	CompanyID  string    `json:"company_id"`
	BadgeID    string    `json:"badge_id"`
	JoinedAt   string    `json:"joined_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
