package employeeerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrBadgeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Badge ID is already in use",
		http.StatusConflict,
	)
	ErrUserAlreadyLinked = apperror.New(
		apperror.CodeConflict,
		"User is already linked to another employee",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrManagerNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"Manager not found in this company",
		http.StatusBadRequest,
	)
	ErrSelfManager = apperror.New(
		apperror.CodeInvalidInput,
		"An employee cannot report to themselves",
		http.StatusBadRequest,
	)
	ErrInvalidJoinDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid joined_at, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
)
