package leaveerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown leave type",
		http.StatusBadRequest,
	)
	ErrInvalidDuration = apperror.New(
		apperror.CodeInvalidInput,
		"Duration must be FULL_DAY, FIRST_HALF or SECOND_HALF",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrCrossYearRequest = apperror.New(
		apperror.CodeInvalidInput,
		"A leave request cannot span two calendar years",
		http.StatusBadRequest,
	)
	ErrPastDate = apperror.New(
		apperror.CodeInvalidInput,
		"Cannot apply for past dates",
		http.StatusBadRequest,
	)
	ErrInsufficientNotice = apperror.New(
		apperror.CodeInvalidInput,
		"Leave must be applied in advance",
		http.StatusBadRequest,
	)
	ErrNoWorkingDays = apperror.New(
		apperror.CodeInvalidInput,
		"The requested period contains no working days",
		http.StatusBadRequest,
	)
	ErrInvalidDays = apperror.New(
		apperror.CodeInvalidInput,
		"Days must be a positive multiple of 0.5",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid actor id",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeInactive = apperror.New(
		apperror.CodeInvalidState,
		"Employee is not active",
		http.StatusUnprocessableEntity,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrOverlappingRequest = apperror.New(
		apperror.CodeConflict,
		"A pending or approved leave request already covers this period",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientFunds,
		"Insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidStateTransition = apperror.New(
		apperror.CodeInvalidState,
		"Invalid leave status transition",
		http.StatusConflict,
	)
	ErrMissingBalanceRecord = apperror.New(
		apperror.CodeInvalidState,
		"Leave balance record not found",
		http.StatusUnprocessableEntity,
	)
	ErrSelfApproval = apperror.New(
		apperror.CodeForbidden,
		"You cannot decide your own leave request",
		http.StatusForbidden,
	)
	ErrCancelForbidden = apperror.New(
		apperror.CodeForbidden,
		"You cannot cancel this leave request",
		http.StatusForbidden,
	)
	ErrBalanceConflict = apperror.New(
		apperror.CodeConflict,
		"Leave balance was modified concurrently, please retry",
		http.StatusConflict,
	)
	ErrLedgerInvariant = apperror.New(
		apperror.CodeInternalError,
		"Leave balance is inconsistent",
		http.StatusInternalServerError,
	)
	ErrInvalidHolidayID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid holiday id",
		http.StatusBadRequest,
	)
	ErrHolidayNotFound = apperror.New(
		apperror.CodeNotFound,
		"Holiday not found",
		http.StatusNotFound,
	)
)
