package approval

import (
	"time"

	"credit-voucher-engine/internal/domain/loan"
	voucherUC "credit-voucher-engine/internal/usecase/voucher"

	"github.com/shopspring/decimal"
)

type ApproveInput struct {
	LoanID         string
	ApprovedAmount decimal.Decimal
	RepaymentDays  int
	VoucherType    string
	Notes          string
	ApprovedBy     string
	// When set the trader fronts the credit and is debited ApprovedAmount.
	OnBehalfOfTraderID *string
}

type ApprovalDTO struct {
	ApprovalID         string                `json:"approval_id"`
	LoanID             string                `json:"loan_id"` // public id
	LoanStatus         loan.Status           `json:"loan_status"`
	ApprovedAmount     decimal.Decimal       `json:"approved_amount"`
	RepaymentDays      int                   `json:"repayment_days"`
	VoucherType        string                `json:"voucher_type"`
	Notes              string                `json:"notes,omitempty"`
	ApprovedBy         string                `json:"approved_by,omitempty"`
	OnBehalfOfTraderID *string               `json:"on_behalf_of_trader_id,omitempty"`
	ApprovedAt         time.Time             `json:"approved_at"`
	Voucher            *voucherUC.VoucherDTO `json:"voucher"`
}
