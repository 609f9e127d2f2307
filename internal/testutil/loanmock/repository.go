package loanmock

import (
	"context"

	domain "credit-voucher-engine/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset reads return context.Canceled, unset writes succeed.
type Repo struct {
	CreateFn                    func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn               func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetOpenLoanByRestaurantIDFn func(ctx context.Context, restaurantID string) (*domain.Loan, error)
	ListFn                      func(ctx context.Context, f domain.ListFilter) ([]*domain.Loan, error)
	UpdateFn                    func(ctx context.Context, l *domain.Loan) error
	DeleteFn                    func(ctx context.Context, l *domain.Loan, deletedBy string) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetOpenLoanByRestaurantID(ctx context.Context, restaurantID string) (*domain.Loan, error) {
	if m.GetOpenLoanByRestaurantIDFn != nil {
		return m.GetOpenLoanByRestaurantIDFn(ctx, restaurantID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]*domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) Update(ctx context.Context, l *domain.Loan) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, l *domain.Loan, deletedBy string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, l, deletedBy)
	}
	return nil
}
