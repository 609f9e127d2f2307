package mysql

import (
	"context"

	"credit-voucher-engine/internal/domain/errs"
	loanDomain "credit-voucher-engine/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	if l.Version == 0 {
		l.Version = 1
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Update(ctx context.Context, l *loanDomain.Loan) error {
	return casUpdate(ctx, r.db, l, &l.Version)
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error; err != nil {
		return nil, notFound(err, "loan", loanID)
	}
	return &out, nil
}

func (r *LoanRepository) GetOpenLoanByRestaurantID(ctx context.Context, restaurantID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND status IN ?", restaurantID,
			[]loanDomain.Status{loanDomain.StatusPending, loanDomain.StatusAccepted}).
		Order("status_updated_at DESC, id DESC").
		First(&out).Error
	if err != nil {
		return nil, notFound(err, "open loan for restaurant", restaurantID)
	}
	return &out, nil
}

func (r *LoanRepository) List(ctx context.Context, f loanDomain.ListFilter) ([]*loanDomain.Loan, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if f.RestaurantID != "" {
		q = q.Where("restaurant_id = ?", f.RestaurantID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []*loanDomain.Loan
	return out, q.Find(&out).Error
}

// Delete is a version-checked soft delete.
func (r *LoanRepository) Delete(ctx context.Context, l *loanDomain.Loan, deletedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&loanDomain.Loan{}).
		Where("id = ? AND version = ?", l.ID, l.Version).
		Updates(map[string]any{
			"deleted_at": r.db.NowFunc(),
			"deleted_by": deletedBy,
			"version":    l.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrVersionConflict
	}
	l.Version++
	return nil
}
