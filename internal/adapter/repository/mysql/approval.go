package mysql

import (
	"context"
	"strconv"

	approvalDomain "credit-voucher-engine/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApprovalRepository) GetByLoanID(ctx context.Context, loanNumericID uint64) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanNumericID).First(&out).Error; err != nil {
		return nil, notFound(err, "approval for loan", strconv.FormatUint(loanNumericID, 10))
	}
	return &out, nil
}

func (r *ApprovalRepository) DeleteByLoanID(ctx context.Context, loanNumericID uint64, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&approvalDomain.Approval{}).
		Where("loan_id = ?", loanNumericID).
		Updates(map[string]any{"deleted_at": r.db.NowFunc(), "deleted_by": deletedBy}).Error
}
