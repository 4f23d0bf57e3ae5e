package leave_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-hrms/internal/leave"
	leaveerrors "go-hrms/internal/leave/errors"
)

func TestHolidayService(t *testing.T) {
	f := newFixture(t)
	svc := leave.NewHolidayService(f.holidays)

	require.NoError(t, f.holidays.CreateShared(f.ctx, &leave.Holiday{
		Name:      "New Year",
		StartDate: mustDate(t, "2026-01-01"),
		EndDate:   mustDate(t, "2026-01-01"),
	}))

	own, err := svc.Create(f.ctx, leave.CreateHolidayRequest{Name: "Retreat", StartDate: "2026-05-04", EndDate: "2026-05-05"})
	require.NoError(t, err)
	assert.False(t, own.Shared)

	single, err := svc.Create(f.ctx, leave.CreateHolidayRequest{Name: "Founders Day", StartDate: "2026-06-01"})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", single.EndDate)

	_, err = svc.Create(f.ctx, leave.CreateHolidayRequest{Name: "Broken", StartDate: "2026-06-05", EndDate: "2026-06-01"})
	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)

	t.Run("list shows own and shared", func(t *testing.T) {
		rows, err := svc.List(f.ctx, 2026)
		require.NoError(t, err)
		assert.Len(t, rows, 3)

		other, err := svc.List(f.otherCtx, 2026)
		require.NoError(t, err)
		require.Len(t, other, 1)
		assert.True(t, other[0].Shared)
	})

	t.Run("delete", func(t *testing.T) {
		err := svc.Delete(f.otherCtx, own.ID)
		assert.ErrorIs(t, err, leaveerrors.ErrHolidayNotFound)

		shared, err := svc.List(f.ctx, 2026)
		require.NoError(t, err)
		for _, h := range shared {
			if h.Shared {
				assert.ErrorIs(t, svc.Delete(f.ctx, h.ID), leaveerrors.ErrHolidayNotFound)
			}
		}

		require.NoError(t, svc.Delete(f.ctx, own.ID))
		assert.ErrorIs(t, svc.Delete(f.ctx, own.ID), leaveerrors.ErrHolidayNotFound)
		assert.ErrorIs(t, svc.Delete(f.ctx, "x"), leaveerrors.ErrInvalidHolidayID)
		assert.ErrorIs(t, svc.Delete(f.ctx, uuid.NewString()), leaveerrors.ErrHolidayNotFound)
	})
}
