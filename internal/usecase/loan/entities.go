package loan

import (
	"time"

	"credit-voucher-engine/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type SubmitInput struct {
	RestaurantID    string
	RequestedAmount decimal.Decimal
	RepaymentDays   int
}

type ListInput struct {
	RestaurantID string
	Status       string
	Limit        int
}

type LoanDTO struct {
	LoanID          string              `json:"loan_id"`
	RestaurantID    string              `json:"restaurant_id"`
	RequestedAmount decimal.Decimal     `json:"requested_amount"`
	RepaymentDays   int                 `json:"repayment_days"`
	Status          loan.Status         `json:"status"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	ApprovedAmount  decimal.NullDecimal `json:"approved_amount"`
	StatusUpdatedAt time.Time           `json:"status_updated_at"`
	CreatedAt       time.Time           `json:"created_at"`
	AllowedActions  []loan.Operation    `json:"allowed_actions"`
}

func ToDTO(l *loan.Loan) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.LoanID,
		RestaurantID:    l.RestaurantID,
		RequestedAmount: l.RequestedAmount,
		RepaymentDays:   l.RepaymentDays,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		ApprovedAmount:  l.ApprovedAmount,
		StatusUpdatedAt: l.StatusUpdatedAt,
		CreatedAt:       l.CreatedAt,
		AllowedActions:  loan.AllowedOperations(l.Status),
	}
}
