package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput      = "INVALID_INPUT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidState      = "INVALID_STATE"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodeTenantRequired    = "TENANT_REQUIRED"
	CodeInsufficientFunds = "INSUFFICIENT_BALANCE"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
