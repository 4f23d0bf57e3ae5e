package leave

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	TypeCasual       = "CL"
	TypeSick         = "SL"
	TypeEarned       = "EL"
	TypeWorkFromHome = "WFH"
	TypeCompOff      = "COMP_OFF"
	TypeLossOfPay    = "LOP"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const (
	DurationFullDay    = "FULL_DAY"
	DurationFirstHalf  = "FIRST_HALF"
	DurationSecondHalf = "SECOND_HALF"
)

// TypePolicy describes how one leave type is counted and funded.
type TypePolicy struct {
	Type            string
	Name            string
	BalanceBearing  bool
	WorkingDaysOnly bool
	MonthlyAccrual  decimal.Decimal
}

var policies = map[string]TypePolicy{
	TypeCasual:       {Type: TypeCasual, Name: "Casual Leave", BalanceBearing: true, WorkingDaysOnly: true},
	TypeSick:         {Type: TypeSick, Name: "Sick Leave", BalanceBearing: true, MonthlyAccrual: decimal.NewFromInt(1)},
	TypeEarned:       {Type: TypeEarned, Name: "Earned Leave", BalanceBearing: true, WorkingDaysOnly: true, MonthlyAccrual: decimal.NewFromInt(1)},
	TypeWorkFromHome: {Type: TypeWorkFromHome, Name: "Work From Home", BalanceBearing: true, WorkingDaysOnly: true},
	TypeCompOff:      {Type: TypeCompOff, Name: "Compensatory Off", BalanceBearing: true, WorkingDaysOnly: true},
	TypeLossOfPay:    {Type: TypeLossOfPay, Name: "Loss of Pay", WorkingDaysOnly: true},
}

// Types lists the leave types in a stable order.
var Types = []string{TypeCasual, TypeSick, TypeEarned, TypeWorkFromHome, TypeCompOff, TypeLossOfPay}

func PolicyFor(leaveType string) (TypePolicy, bool) {
	p, ok := policies[strings.ToUpper(strings.TrimSpace(leaveType))]
	return p, ok
}

// BalanceTypes lists the types that keep a ledger row per employee and year.
func BalanceTypes() []TypePolicy {
	out := make([]TypePolicy, 0, len(Types))
	for _, t := range Types {
		if p := policies[t]; p.BalanceBearing {
			out = append(out, p)
		}
	}
	return out
}

func validDuration(d string) bool {
	switch d {
	case DurationFullDay, DurationFirstHalf, DurationSecondHalf:
		return true
	}
	return false
}
