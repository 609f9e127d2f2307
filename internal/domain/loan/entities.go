package loan

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusDisbursed Status = "disbursed"
	StatusSettled   Status = "settled"
)

// Loan is a restaurant's loan application, the root aggregate that owns its vouchers.
type Loan struct {
	ID              uint64              `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string              `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	RestaurantID    string              `gorm:"size:32;index:idx_loans_restaurant_status" json:"restaurant_id"`
	RequestedAmount decimal.Decimal     `gorm:"type:decimal(18,2);not null" json:"requested_amount"`
	RepaymentDays   int                 `gorm:"not null" json:"repayment_days"`
	Status          Status              `gorm:"size:16;not null;index:idx_loans_restaurant_status" json:"status"`
	RejectionReason *string             `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedAmount  decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"approved_amount"`
	StatusUpdatedAt time.Time           `json:"status_updated_at"`
	// Version backs optimistic concurrency: every write is conditional on it.
	Version   int64          `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy string         `gorm:"size:32" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Terminal reports whether no further transition is reachable.
func (s Status) Terminal() bool { return s == StatusRejected || s == StatusSettled }

// HasFinancialHistory is true once money has left the platform for this loan.
func (s Status) HasFinancialHistory() bool { return s == StatusDisbursed || s == StatusSettled }
