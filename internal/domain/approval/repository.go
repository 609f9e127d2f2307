package approval

import "context"

type Repository interface {
	// Create a new approval (DB uniqueness ensures at most one per loan)
	Create(ctx context.Context, a *Approval) error

	// Get approval by numeric loan ID
	GetByLoanID(ctx context.Context, loanID uint64) (*Approval, error)

	// Soft-delete the approval of a deleted loan
	DeleteByLoanID(ctx context.Context, loanID uint64, deletedBy string) error
}
