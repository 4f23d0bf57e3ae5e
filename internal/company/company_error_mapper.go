package company

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	companyerrors "go-hrms/internal/company/errors"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return companyerrors.ErrCompanyNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return companyerrors.ErrEmailDomainTaken
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return companyerrors.ErrEmailDomainTaken
	}
	return err
}
