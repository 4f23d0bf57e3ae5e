package companyerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrCompanyNotFound = apperror.New(
		apperror.CodeNotFound,
		"Company not found",
		http.StatusNotFound,
	)

	ErrEmailDomainTaken = apperror.New(
		apperror.CodeConflict,
		"Email domain is already registered to another company",
		http.StatusConflict,
	)

	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)

	ErrInvalidEmailDomain = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid email domain",
		http.StatusBadRequest,
	)

	ErrInvalidTimezone = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid timezone",
		http.StatusBadRequest,
	)

	ErrSettingsLocked = apperror.New(
		apperror.CodeInvalidState,
		"Email domain and timezone cannot change once employees exist",
		http.StatusConflict,
	)

	ErrCompanyInactive = apperror.New(
		apperror.CodeForbidden,
		"Company is inactive",
		http.StatusForbidden,
	)
)
