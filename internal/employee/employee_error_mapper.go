package employee

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	employeeerrors "go-hrms/internal/employee/errors"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return uniqueViolation(pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return uniqueViolation(err.Error())
	}

	return err
}

func uniqueViolation(constraint string) error {
	c := strings.ToLower(constraint)
	switch {
	case strings.Contains(c, "badge"):
		return employeeerrors.ErrBadgeAlreadyExists
	case strings.Contains(c, "user"):
		return employeeerrors.ErrUserAlreadyLinked
	default:
		return employeeerrors.ErrEmployeeAlreadyExists
	}
}
