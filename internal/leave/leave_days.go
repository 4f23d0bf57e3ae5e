package leave

import (
	"time"

	"github.com/shopspring/decimal"

	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/shared/dateutil"
)

// CountDays returns how many days of [start, end] a request of the given
// policy consumes. Weekends and holidays are skipped for working-day types.
func CountDays(start, end time.Time, policy TypePolicy, holidays []Holiday) int {
	start, end = dateutil.Date(start), dateutil.Date(end)

	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if policy.WorkingDaysOnly && (isWeekend(d) || onHoliday(d, holidays)) {
			continue
		}
		n++
	}
	return n
}

// RequestedDays applies the duration to the counted days: a half day is 0.5
// on a single day and one half less than the count on a longer span.
func RequestedDays(start, end time.Time, duration string, policy TypePolicy, holidays []Holiday) (decimal.Decimal, error) {
	n := CountDays(start, end, policy, holidays)
	if n == 0 {
		return decimal.Zero, leaveerrors.ErrNoWorkingDays
	}

	days := decimal.NewFromInt(int64(n))
	if duration == DurationFirstHalf || duration == DurationSecondHalf {
		if dateutil.Date(start).Equal(dateutil.Date(end)) {
			return half, nil
		}
		return days.Sub(half), nil
	}
	return days, nil
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func onHoliday(d time.Time, holidays []Holiday) bool {
	for _, h := range holidays {
		if !d.Before(dateutil.Date(h.StartDate)) && !d.After(dateutil.Date(h.EndDate)) {
			return true
		}
	}
	return false
}
