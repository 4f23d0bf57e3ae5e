package auth

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	autherrors "go-hrms/internal/auth/errors"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return autherrors.ErrUserNotFound
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
	case strings.Contains(c, "username"):
		return autherrors.ErrUsernameTaken
	case strings.Contains(c, "employee"):
		return autherrors.ErrEmployeeAlreadyLinked
	default:
		return autherrors.ErrEmailTaken
	}
}
