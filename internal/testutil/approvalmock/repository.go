package approvalmock

import (
	"context"

	domain "credit-voucher-engine/internal/domain/approval"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Deleted records the soft deletes it saw when DeleteByLoanIDFn is unset.
type Repo struct {
	CreateFn         func(ctx context.Context, a *domain.Approval) error
	GetByLoanIDFn    func(ctx context.Context, loanNumericID uint64) (*domain.Approval, error)
	DeleteByLoanIDFn func(ctx context.Context, loanNumericID uint64, deletedBy string) error

	Deleted map[uint64]string
}

func (m *Repo) Create(ctx context.Context, a *domain.Approval) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanNumericID uint64) (*domain.Approval, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanNumericID)
	}
	return nil, context.Canceled
}

func (m *Repo) DeleteByLoanID(ctx context.Context, loanNumericID uint64, deletedBy string) error {
	if m.DeleteByLoanIDFn != nil {
		return m.DeleteByLoanIDFn(ctx, loanNumericID, deletedBy)
	}
	if m.Deleted == nil {
		m.Deleted = map[uint64]string{}
	}
	m.Deleted[loanNumericID] = deletedBy
	return nil
}
