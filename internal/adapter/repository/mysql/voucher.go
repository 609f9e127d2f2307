package mysql

import (
	"context"
	"time"

	voucherDomain "credit-voucher-engine/internal/domain/voucher"

	"gorm.io/gorm"
)

type VoucherRepository struct{ db *gorm.DB }

func NewVoucherRepository(db *gorm.DB) *VoucherRepository { return &VoucherRepository{db: db} }

func (r *VoucherRepository) Create(ctx context.Context, v *voucherDomain.Voucher) error {
	if v.Version == 0 {
		v.Version = 1
	}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VoucherRepository) Update(ctx context.Context, v *voucherDomain.Voucher) error {
	return casUpdate(ctx, r.db, v, &v.Version)
}

func (r *VoucherRepository) GetByVoucherID(ctx context.Context, voucherID string) (*voucherDomain.Voucher, error) {
	var out voucherDomain.Voucher
	if err := r.db.WithContext(ctx).Where("voucher_id = ?", voucherID).First(&out).Error; err != nil {
		return nil, notFound(err, "voucher", voucherID)
	}
	return &out, nil
}

func (r *VoucherRepository) GetByCode(ctx context.Context, code string) (*voucherDomain.Voucher, error) {
	var out voucherDomain.Voucher
	if err := r.db.WithContext(ctx).Where("voucher_code = ?", code).First(&out).Error; err != nil {
		return nil, notFound(err, "voucher code", code)
	}
	return &out, nil
}

func (r *VoucherRepository) ListByLoanID(ctx context.Context, loanID string) ([]*voucherDomain.Voucher, error) {
	var out []*voucherDomain.Voucher
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("issued_at, id").Find(&out).Error
	return out, err
}

func (r *VoucherRepository) DeleteByLoanID(ctx context.Context, loanID string) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&voucherDomain.Voucher{}).Error
}

func (r *VoucherRepository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]*voucherDomain.Voucher, error) {
	var out []*voucherDomain.Voucher
	err := r.db.WithContext(ctx).
		Where("status = ? AND used_at IS NULL AND expiry_date <= ?", voucherDomain.StatusActive, now).
		Order("expiry_date, id").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *VoucherRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*voucherDomain.Voucher, error) {
	var out []*voucherDomain.Voucher
	err := r.db.WithContext(ctx).
		Where("status = ? AND repayment_due_date IS NOT NULL AND repayment_due_date < ?", voucherDomain.StatusUsed, now).
		Order("repayment_due_date, id").
		Limit(limit).
		Find(&out).Error
	return out, err
}
