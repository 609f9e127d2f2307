package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	LoanSubmitted    Type = "loan.submitted"
	LoanApproved     Type = "loan.approved"
	LoanRejected     Type = "loan.rejected"
	LoanDisbursed    Type = "loan.disbursed"
	LoanSettled      Type = "loan.settled"
	VoucherIssued    Type = "voucher.issued"
	VoucherExpired   Type = "voucher.expired"
	VoucherMatured   Type = "voucher.matured"
	VoucherSettled   Type = "voucher.settled"
	VoucherSuspended Type = "voucher.suspended"
)

// Event is a lifecycle fact published after the state change has committed.
type Event struct {
	ID           string           `json:"id"`
	Type         Type             `json:"type"`
	LoanID       string           `json:"loan_id,omitempty"`
	VoucherID    string           `json:"voucher_id,omitempty"`
	RestaurantID string           `json:"restaurant_id,omitempty"`
	TraderID     string           `json:"trader_id,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// Notifier delivers events to user-facing messaging. Delivery is
// fire-and-forget: a failure never undoes the committed transition.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}
