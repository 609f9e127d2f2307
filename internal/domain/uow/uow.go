package uow

import (
	"context"

	"credit-voucher-engine/internal/domain/approval"
	"credit-voucher-engine/internal/domain/delegation"
	"credit-voucher-engine/internal/domain/loan"
	"credit-voucher-engine/internal/domain/voucher"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans       loan.Repository
	Approvals   approval.Repository
	Vouchers    voucher.Repository
	Delegations delegation.Repository
}

type UnitOfWork interface {
	// plain tx: commit if fn returns nil, roll back otherwise
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: load the loan first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
