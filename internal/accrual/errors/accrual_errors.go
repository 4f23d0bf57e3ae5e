package accrualerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrAccrualAlreadyProcessed = apperror.New(
		apperror.CodeConflict,
		"Accrual already processed for this period",
		http.StatusConflict,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"Accrual period needs a month between 1 and 12 and a year",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"Accrual amount must be a non-negative multiple of 0.5",
		http.StatusBadRequest,
	)
)
