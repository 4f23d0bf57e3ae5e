package leave

import (
	"errors"

	"gorm.io/gorm"

	leaveerrors "go-hrms/internal/leave/errors"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return err
}
