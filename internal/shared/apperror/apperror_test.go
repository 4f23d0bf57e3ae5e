package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps its status", func(t *testing.T) {
		httpErr := ToHTTP(fmt.Errorf("wrapped: %w", ErrForbidden))
		assert.Equal(t, http.StatusForbidden, httpErr.Status)
		assert.Equal(t, CodeForbidden, httpErr.Code)
		assert.Equal(t, ErrForbidden.Message, httpErr.Message)
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		httpErr := ToHTTP(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, CodeInternalError, httpErr.Code)
		assert.NotContains(t, httpErr.Message, "pq")
	})
}

func TestWithCause(t *testing.T) {
	cause := errors.New("boom")
	err := ErrNotFound.WithCause(cause)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, ErrNotFound.Err)
}

func TestMapValidationError(t *testing.T) {
	type payload struct {
		StartDate string `validate:"required"`
		Days      int    `validate:"min=1"`
	}

	v := validator.New()

	err := MapValidationError(v.Struct(payload{Days: 1}))
	assert.Equal(t, "Startdate is required", err.Error())

	err = MapValidationError(v.Struct(payload{StartDate: "x"}))
	assert.Equal(t, "Days is invalid", err.Error())

	var appErr *AppError
	err = MapValidationError(errors.New("bad json"))
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeInvalidInput, appErr.Code)
}
