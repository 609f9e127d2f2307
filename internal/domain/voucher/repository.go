package voucher

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, v *Voucher) error
	GetByVoucherID(ctx context.Context, voucherID string) (*Voucher, error)
	GetByCode(ctx context.Context, code string) (*Voucher, error)
	ListByLoanID(ctx context.Context, loanID string) ([]*Voucher, error)
	// Update is a compare-and-swap on Version (errs.ErrVersionConflict on a lost race).
	Update(ctx context.Context, v *Voucher) error
	DeleteByLoanID(ctx context.Context, loanID string) error

	// ListExpirable returns active, never-used vouchers with expiry_date <= now.
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]*Voucher, error)
	// ListOverdue returns used vouchers whose repayment_due_date < now.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*Voucher, error)
}
