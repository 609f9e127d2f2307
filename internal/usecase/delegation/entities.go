package delegation

import (
	"time"

	"credit-voucher-engine/internal/domain/delegation"

	"github.com/shopspring/decimal"
)

type CreateInput struct {
	TraderID       string
	TraderName     string
	InitialBalance decimal.Decimal
}

type DelegationDTO struct {
	DelegationID     string            `json:"delegation_id"`
	TraderID         string            `json:"trader_id"`
	TraderName       string            `json:"trader_name"`
	Status           delegation.Status `json:"status"`
	AvailableBalance decimal.Decimal   `json:"available_balance"`
	AcceptedAt       *time.Time        `json:"accepted_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

func toDTO(d *delegation.Delegation) *DelegationDTO {
	return &DelegationDTO{
		DelegationID:     d.DelegationID,
		TraderID:         d.TraderID,
		TraderName:       d.TraderName,
		Status:           d.Status,
		AvailableBalance: d.AvailableBalance,
		AcceptedAt:       d.AcceptedAt,
		CreatedAt:        d.CreatedAt,
	}
}
