package mysql

import (
	"context"

	delegationDomain "credit-voucher-engine/internal/domain/delegation"

	"gorm.io/gorm"
)

type DelegationRepository struct{ db *gorm.DB }

func NewDelegationRepository(db *gorm.DB) *DelegationRepository {
	return &DelegationRepository{db: db}
}

func (r *DelegationRepository) Create(ctx context.Context, d *delegationDomain.Delegation) error {
	if d.Version == 0 {
		d.Version = 1
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DelegationRepository) Update(ctx context.Context, d *delegationDomain.Delegation) error {
	return casUpdate(ctx, r.db, d, &d.Version)
}

func (r *DelegationRepository) GetByTraderID(ctx context.Context, traderID string) (*delegationDomain.Delegation, error) {
	var out delegationDomain.Delegation
	if err := r.db.WithContext(ctx).Where("trader_id = ?", traderID).First(&out).Error; err != nil {
		return nil, notFound(err, "delegation for trader", traderID)
	}
	return &out, nil
}

func (r *DelegationRepository) ListByStatus(ctx context.Context, status delegationDomain.Status) ([]*delegationDomain.Delegation, error) {
	var out []*delegationDomain.Delegation
	err := r.db.WithContext(ctx).Where("status = ?", status).Order("trader_name, id").Find(&out).Error
	return out, err
}
