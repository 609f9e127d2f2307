package delegation

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// Delegation is a trader's agreement to front credit for loans approved on
// their behalf. Independent aggregate: loans reference it, never own it.
type Delegation struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"-"`
	DelegationID     string          `gorm:"size:32;uniqueIndex:ux_delegations_delegation_id" json:"delegation_id"`
	TraderID         string          `gorm:"size:32;uniqueIndex:ux_delegations_trader" json:"trader_id"`
	TraderName       string          `gorm:"size:128" json:"trader_name"`
	Status           Status          `gorm:"size:16;not null;index" json:"status"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"available_balance"`
	AcceptedAt       *time.Time      `json:"accepted_at,omitempty"`
	Version          int64           `gorm:"not null" json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Delegation) TableName() string { return "trader_delegations" }
