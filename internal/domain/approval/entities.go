package approval

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Approval records the operator decision that moved a loan to approved.
// Table: approvals. At most one live row per loan.
type Approval struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	ApprovalID string `gorm:"column:approval_id;size:32;not null;uniqueIndex:ux_approvals_approval_id"`
	// FK to loans.id (numeric)
	LoanID         uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_approvals_loan"`
	ApprovedAmount decimal.Decimal `gorm:"column:approved_amount;type:decimal(18,2);not null"`
	RepaymentDays  int             `gorm:"column:repayment_days;not null"`
	VoucherType    string          `gorm:"column:voucher_type;size:16;not null"`
	Notes          string          `gorm:"column:notes;type:text"`
	ApprovedBy     string          `gorm:"column:approved_by;size:32"`
	// Set when a trader fronts the credit; that trader's balance was debited by ApprovedAmount.
	OnBehalfOfTraderID *string        `gorm:"column:on_behalf_of_trader_id;size:32;index"`
	ApprovedAt         time.Time      `gorm:"column:approved_at;not null"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"column:deleted_at;index"`
	DeletedBy          *string        `gorm:"column:deleted_by;size:32"`
}

func (Approval) TableName() string { return "approvals" }
