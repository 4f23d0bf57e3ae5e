package leave

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	leaveerrors "go-hrms/internal/leave/errors"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestRequestedDays(t *testing.T) {
	casual, _ := PolicyFor(TypeCasual)
	sick, _ := PolicyFor(TypeSick)
	// 2026-03-02 is a Monday
	holidays := []Holiday{{Name: "Founders Day", StartDate: day("2026-03-04"), EndDate: day("2026-03-04")}}

	tests := []struct {
		name     string
		start    string
		end      string
		duration string
		policy   TypePolicy
		holidays []Holiday
		want     string
		err      error
	}{
		{"single working day", "2026-03-02", "2026-03-02", DurationFullDay, casual, nil, "1", nil},
		{"week skips weekend", "2026-03-02", "2026-03-08", DurationFullDay, casual, nil, "5", nil},
		{"week skips holiday", "2026-03-02", "2026-03-06", DurationFullDay, casual, holidays, "4", nil},
		{"sick leave counts calendar days", "2026-03-02", "2026-03-08", DurationFullDay, sick, holidays, "7", nil},
		{"half day single", "2026-03-02", "2026-03-02", DurationFirstHalf, casual, nil, "0.5", nil},
		{"half day span", "2026-03-02", "2026-03-03", DurationSecondHalf, casual, nil, "1.5", nil},
		{"half day span over holiday", "2026-03-03", "2026-03-05", DurationFirstHalf, casual, holidays, "1.5", nil},
		{"weekend only", "2026-03-07", "2026-03-08", DurationFullDay, casual, nil, "0", leaveerrors.ErrNoWorkingDays},
		{"half day on a weekend", "2026-03-07", "2026-03-07", DurationFirstHalf, casual, nil, "0", leaveerrors.ErrNoWorkingDays},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequestedDays(day(tt.start), day(tt.end), tt.duration, tt.policy, tt.holidays)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestLeaveBalance_Ledger(t *testing.T) {
	d := decimal.RequireFromString

	b := &LeaveBalance{}
	assert.NoError(t, b.Credit(d("2")))
	assert.NoError(t, b.Validate())

	assert.ErrorIs(t, b.Deduct(d("2.5")), leaveerrors.ErrInsufficientBalance)
	assert.True(t, b.AvailableDays.Equal(d("2")), "failed deduction leaves the row untouched")

	assert.NoError(t, b.Deduct(d("1.5")))
	assert.True(t, b.UsedDays.Equal(d("1.5")))
	assert.True(t, b.AvailableDays.Equal(d("0.5")))
	assert.NoError(t, b.Validate())

	assert.ErrorIs(t, b.Restore(d("2")), leaveerrors.ErrLedgerInvariant)
	assert.NoError(t, b.Restore(d("1.5")))
	assert.True(t, b.AvailableDays.Equal(d("2")))

	assert.ErrorIs(t, b.Credit(d("0.3")), leaveerrors.ErrInvalidDays)
	assert.ErrorIs(t, b.Deduct(d("0")), leaveerrors.ErrInvalidDays)
	assert.ErrorIs(t, b.Restore(d("-1")), leaveerrors.ErrInvalidDays)

	b.AvailableDays = d("3")
	assert.ErrorIs(t, b.Validate(), leaveerrors.ErrLedgerInvariant)
}

func TestPolicyFor(t *testing.T) {
	p, ok := PolicyFor(" el ")
	assert.True(t, ok)
	assert.Equal(t, TypeEarned, p.Type)

	lop, _ := PolicyFor(TypeLossOfPay)
	assert.False(t, lop.BalanceBearing)

	_, ok = PolicyFor("ANNUAL")
	assert.False(t, ok)

	for _, bt := range BalanceTypes() {
		assert.NotEqual(t, TypeLossOfPay, bt.Type)
	}
	assert.Len(t, BalanceTypes(), 5)
}
