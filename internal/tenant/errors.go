package tenant

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrContextMissing = apperror.New(
		apperror.CodeTenantRequired,
		"An active company is required for this operation",
		http.StatusForbidden,
	)

	// ErrCrossTenantWrite hides whether the foreign row exists.
	ErrCrossTenantWrite = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrUnownedCreate = apperror.New(
		apperror.CodeInternalError,
		"Entity cannot be created inside a company scope",
		http.StatusInternalServerError,
	)
)
