package events

import "time"

const LeaveNotificationTopic = "hr.leave.notifications.v1"

const (
	LeaveSubmittedType = "leave.submitted"
	LeaveApprovedType  = "leave.approved"
	LeaveRejectedType  = "leave.rejected"
	LeaveCancelledType = "leave.cancelled"
)

// LeaveNotificationEvent asks the delivery side to tell RecipientID about a
// leave request transition.
type LeaveNotificationEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	CompanyID      string    `json:"company_id"`
	LeaveRequestID string    `json:"leave_request_id"`
	EmployeeID     string    `json:"employee_id"`
	RecipientID    string    `json:"recipient_id,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	LeaveType      string    `json:"leave_type"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	Days           string    `json:"days"`
	Status         string    `json:"status"`
	Comments       string    `json:"comments,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
