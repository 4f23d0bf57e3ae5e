package rbac

const (
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

// Hierarchy lists (role, inherits-from) pairs.
var Hierarchy = [][2]string{
	{RoleManager, RoleEmployee},
	{RoleHR, RoleManager},
	{RoleAdmin, RoleHR},
}

// DefaultPolicies are (role, resource, action) grants before inheritance.
var DefaultPolicies = [][]string{
	{RoleEmployee, "company", "read"},
	{RoleEmployee, "employee", "read"},
	{RoleEmployee, "leave", "create"},
	{RoleEmployee, "leave", "read"},
	{RoleEmployee, "leave", "cancel"},
	{RoleEmployee, "leave_balance", "read"},
	{RoleEmployee, "holiday", "read"},
	{RoleEmployee, "rbac", "read"},

	{RoleManager, "leave", "approve"},
	{RoleManager, "leave", "read_team"},

	{RoleHR, "employee", "create"},
	{RoleHR, "employee", "update"},
	{RoleHR, "employee", "delete"},
	{RoleHR, "user", "create"},
	{RoleHR, "leave", "read_all"},
	{RoleHR, "leave_balance", "read_all"},
	{RoleHR, "holiday", "create"},
	{RoleHR, "holiday", "delete"},

	{RoleAdmin, "*", "*"},
}

func ValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	default:
		return false
	}
}
