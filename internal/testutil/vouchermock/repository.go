package vouchermock

import (
	"context"
	"time"

	domain "credit-voucher-engine/internal/domain/voucher"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn         func(ctx context.Context, v *domain.Voucher) error
	GetByVoucherIDFn func(ctx context.Context, voucherID string) (*domain.Voucher, error)
	GetByCodeFn      func(ctx context.Context, code string) (*domain.Voucher, error)
	ListByLoanIDFn   func(ctx context.Context, loanID string) ([]*domain.Voucher, error)
	UpdateFn         func(ctx context.Context, v *domain.Voucher) error
	DeleteByLoanIDFn func(ctx context.Context, loanID string) error
	ListExpirableFn  func(ctx context.Context, now time.Time, limit int) ([]*domain.Voucher, error)
	ListOverdueFn    func(ctx context.Context, now time.Time, limit int) ([]*domain.Voucher, error)
}

func (m *Repo) Create(ctx context.Context, v *domain.Voucher) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, v)
	}
	return nil
}

func (m *Repo) GetByVoucherID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	if m.GetByVoucherIDFn != nil {
		return m.GetByVoucherIDFn(ctx, voucherID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID string) ([]*domain.Voucher, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) Update(ctx context.Context, v *domain.Voucher) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, v)
	}
	return nil
}

func (m *Repo) DeleteByLoanID(ctx context.Context, loanID string) error {
	if m.DeleteByLoanIDFn != nil {
		return m.DeleteByLoanIDFn(ctx, loanID)
	}
	return nil
}

func (m *Repo) ListExpirable(ctx context.Context, now time.Time, limit int) ([]*domain.Voucher, error) {
	if m.ListExpirableFn != nil {
		return m.ListExpirableFn(ctx, now, limit)
	}
	return nil, nil
}

func (m *Repo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*domain.Voucher, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, now, limit)
	}
	return nil, nil
}
