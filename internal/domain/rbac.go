package domain

// EnforceRequest asks whether a role may perform action on resource.
type EnforceRequest struct {
	Role     string `json:"role"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}

type PermissionResponse struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}
