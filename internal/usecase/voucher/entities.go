package voucher

import (
	"time"

	"credit-voucher-engine/internal/domain/credit"
	"credit-voucher-engine/internal/domain/voucher"

	"github.com/shopspring/decimal"
)

type IssueInput struct {
	LoanID        string
	CreditLimit   decimal.Decimal
	VoucherType   string
	RepaymentDays int
}

type RepaymentView struct {
	Days  int                  `json:"days"`
	Kind  credit.RepaymentKind `json:"kind"`
	Label string               `json:"label"`
}

type VoucherDTO struct {
	VoucherID          string              `json:"voucher_id"`
	VoucherCode        string              `json:"voucher_code"`
	LoanID             string              `json:"loan_id"`
	RestaurantID       string              `json:"restaurant_id"`
	VoucherType        voucher.Type        `json:"voucher_type"`
	DiscountPercentage int                 `json:"discount_percentage"`
	CreditLimit        decimal.Decimal     `json:"credit_limit"`
	UsedCredit         decimal.Decimal     `json:"used_credit"`
	RemainingCredit    decimal.Decimal     `json:"remaining_credit"`
	Status             voucher.Status      `json:"status"`
	EffectiveStatus    voucher.Status      `json:"effective_status"`
	SuspendReason      *string             `json:"suspend_reason,omitempty"`
	IssuedAt           time.Time           `json:"issued_at"`
	ExpiryDate         time.Time           `json:"expiry_date"`
	RepaymentDays      int                 `json:"repayment_days"`
	UsedAt             *time.Time          `json:"used_at,omitempty"`
	RepaymentDueDate   *time.Time          `json:"repayment_due_date,omitempty"`
	SettledAt          *time.Time          `json:"settled_at,omitempty"`
	TimeToExpiry       string              `json:"time_to_expiry,omitempty"`
	Repayment          *RepaymentView      `json:"repayment,omitempty"`
	AllowedActions     []voucher.Operation `json:"allowed_actions"`
}

type QuoteDTO struct {
	VoucherID          string          `json:"voucher_id"`
	OrderSubtotal      decimal.Decimal `json:"order_subtotal"`
	DiscountPercentage int             `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	RemainingCredit    decimal.Decimal `json:"remaining_credit"`
	PayableAmount      decimal.Decimal `json:"payable_amount"`
}

// ToDTO renders v as seen at now: effective status and countdowns are derived, not stored.
func ToDTO(v *voucher.Voucher, now time.Time) *VoucherDTO {
	eff := v.EffectiveStatus(now)
	dto := &VoucherDTO{
		VoucherID:          v.VoucherID,
		VoucherCode:        v.VoucherCode,
		LoanID:             v.LoanID,
		RestaurantID:       v.RestaurantID,
		VoucherType:        v.Type,
		DiscountPercentage: v.DiscountPercentage,
		CreditLimit:        v.CreditLimit,
		UsedCredit:         v.UsedCredit,
		RemainingCredit:    credit.RemainingCredit(v),
		Status:             v.Status,
		EffectiveStatus:    eff,
		SuspendReason:      v.SuspendReason,
		IssuedAt:           v.IssuedAt,
		ExpiryDate:         v.ExpiryDate,
		RepaymentDays:      v.RepaymentDays,
		UsedAt:             v.UsedAt,
		RepaymentDueDate:   v.RepaymentDueDate,
		SettledAt:          v.SettledAt,
		AllowedActions:     voucher.AllowedOperations(eff),
	}
	if c, ok := credit.TimeToExpiry(v, now); ok {
		dto.TimeToExpiry = c.Label()
	}
	switch eff {
	case voucher.StatusActive, voucher.StatusUsed, voucher.StatusMatured:
		r := credit.DaysRemainingOrOverdue(v, now)
		dto.Repayment = &RepaymentView{Days: r.Days, Kind: r.Kind, Label: r.Label()}
	}
	if dto.AllowedActions == nil {
		dto.AllowedActions = []voucher.Operation{}
	}
	return dto
}
