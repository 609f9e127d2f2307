// Package credit derives money and time figures from voucher state. Every
// function is pure: the current time is always an argument.
package credit

import (
	"fmt"
	"time"

	"credit-voucher-engine/internal/domain/voucher"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RemainingCredit = creditLimit - usedCredit, never negative.
func RemainingCredit(v *voucher.Voucher) decimal.Decimal {
	r := v.RemainingCredit()
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// DiscountAmount = min(orderSubtotal * discountPercentage, remainingCredit).
func DiscountAmount(v *voucher.Voucher, orderSubtotal decimal.Decimal) decimal.Decimal {
	if !orderSubtotal.IsPositive() {
		return decimal.Zero
	}
	pct := v.DiscountPercentage
	if pct == 0 {
		pct, _ = v.Type.DiscountPercentage()
	}
	raw := orderSubtotal.Mul(decimal.NewFromInt(int64(pct))).Div(hundred).Round(2)
	return decimal.Min(raw, RemainingCredit(v))
}

type Countdown struct {
	Remaining time.Duration
	Expired   bool
}

func (c Countdown) Label() string {
	if c.Expired {
		return "expired"
	}
	h := int(c.Remaining / time.Hour)
	m := int((c.Remaining % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm left", h, m)
}

// TimeToExpiry applies to active, never-used vouchers only; ok is false otherwise.
func TimeToExpiry(v *voucher.Voucher, now time.Time) (c Countdown, ok bool) {
	if v.Status != voucher.StatusActive || v.UsedAt != nil {
		return Countdown{}, false
	}
	d := v.ExpiryDate.Sub(now)
	if d <= 0 {
		return Countdown{Expired: true}, true
	}
	return Countdown{Remaining: d}, true
}

type RepaymentKind string

const (
	DaysLeft RepaymentKind = "days_left"
	DueToday RepaymentKind = "due_today"
	Overdue  RepaymentKind = "overdue"
	// Given: no due date yet, Days is the configured repayment term.
	Given RepaymentKind = "given"
)

type Repayment struct {
	Days int           `json:"days"`
	Kind RepaymentKind `json:"kind"`
}

func (r Repayment) Label() string {
	switch r.Kind {
	case DueToday:
		return "due today"
	case Overdue:
		if r.Days == 0 {
			return "overdue since today"
		}
		return fmt.Sprintf("overdue by %d days", -r.Days)
	case Given:
		return fmt.Sprintf("%d days given", r.Days)
	default:
		return fmt.Sprintf("%d days left", r.Days)
	}
}

// DaysRemainingOrOverdue counts whole UTC calendar days from now to the
// repayment due date: positive = left, 0 = due today, negative = overdue.
// On the due day itself the kind turns Overdue once the due instant has
// passed, matching the MATURED effective status.
func DaysRemainingOrOverdue(v *voucher.Voucher, now time.Time) Repayment {
	if v.RepaymentDueDate == nil {
		return Repayment{Days: v.RepaymentDays, Kind: Given}
	}
	days := calendarDays(now, *v.RepaymentDueDate)
	switch {
	case days > 0:
		return Repayment{Days: days, Kind: DaysLeft}
	case days == 0 && now.After(*v.RepaymentDueDate):
		return Repayment{Days: 0, Kind: Overdue}
	case days == 0:
		return Repayment{Days: 0, Kind: DueToday}
	default:
		return Repayment{Days: days, Kind: Overdue}
	}
}

func calendarDays(from, to time.Time) int {
	f := truncateDay(from)
	t := truncateDay(to)
	return int(t.Sub(f).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
