package voucher

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusUsed      Status = "used"
	StatusMatured   Status = "matured"
	StatusExpired   Status = "expired"
	StatusSuspended Status = "suspended"
	StatusSettled   Status = "settled"
)

type Type string

const (
	TypeDiscount10  Type = "discount_10"
	TypeDiscount20  Type = "discount_20"
	TypeDiscount50  Type = "discount_50"
	TypeDiscount80  Type = "discount_80"
	TypeDiscount100 Type = "discount_100"
)

var discountPercentages = map[Type]int{
	TypeDiscount10:  10,
	TypeDiscount20:  20,
	TypeDiscount50:  50,
	TypeDiscount80:  80,
	TypeDiscount100: 100,
}

// DiscountPercentage returns the fixed percentage for t, false if t is unknown.
func (t Type) DiscountPercentage() (int, bool) {
	p, ok := discountPercentages[t]
	return p, ok
}

// ParseType accepts either case, e.g. "DISCOUNT_50" or "discount_50".
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

func (t Type) Valid() bool {
	_, ok := discountPercentages[t]
	return ok
}

// Voucher is a capped, time-boxed discount instrument bound to a loan.
// Invariant: 0 <= UsedCredit <= CreditLimit.
type Voucher struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	VoucherID          string          `gorm:"size:32;uniqueIndex:ux_vouchers_voucher_id" json:"voucher_id"`
	VoucherCode        string          `gorm:"size:32;uniqueIndex:ux_vouchers_code" json:"voucher_code"`
	LoanID             string          `gorm:"size:32;index" json:"loan_id"`
	RestaurantID       string          `gorm:"size:32;index" json:"restaurant_id"`
	Type               Type            `gorm:"column:voucher_type;size:16;not null" json:"voucher_type"`
	DiscountPercentage int             `gorm:"not null" json:"discount_percentage"`
	CreditLimit        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"credit_limit"`
	UsedCredit         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"used_credit"`
	Status             Status          `gorm:"size:16;not null;index:idx_vouchers_status_dates" json:"status"`
	SuspendReason      *string         `gorm:"type:text" json:"suspend_reason,omitempty"`
	IssuedAt           time.Time       `gorm:"not null" json:"issued_at"`
	ExpiryDate         time.Time       `gorm:"not null;index:idx_vouchers_status_dates" json:"expiry_date"`
	RepaymentDays      int             `gorm:"not null" json:"repayment_days"`
	UsedAt             *time.Time      `json:"used_at,omitempty"`
	RepaymentDueDate   *time.Time      `gorm:"index" json:"repayment_due_date,omitempty"`
	SettledAt          *time.Time      `json:"settled_at,omitempty"`
	Version            int64           `gorm:"not null" json:"-"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Voucher) TableName() string { return "vouchers" }

func (v *Voucher) RemainingCredit() decimal.Decimal { return v.CreditLimit.Sub(v.UsedCredit) }

// EffectiveStatus derives the time-based statuses from timestamps instead of
// trusting a stored value that the scheduler may not have refreshed yet.
func (v *Voucher) EffectiveStatus(now time.Time) Status {
	switch v.Status {
	case StatusActive:
		if v.UsedAt == nil && !now.Before(v.ExpiryDate) {
			return StatusExpired
		}
	case StatusUsed:
		if v.RepaymentDueDate != nil && now.After(*v.RepaymentDueDate) {
			return StatusMatured
		}
	}
	return v.Status
}

func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusSuspended || s == StatusSettled
}
