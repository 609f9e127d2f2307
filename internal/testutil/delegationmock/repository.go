package delegationmock

import (
	"context"

	domain "credit-voucher-engine/internal/domain/delegation"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn        func(ctx context.Context, d *domain.Delegation) error
	GetByTraderIDFn func(ctx context.Context, traderID string) (*domain.Delegation, error)
	ListByStatusFn  func(ctx context.Context, status domain.Status) ([]*domain.Delegation, error)
	UpdateFn        func(ctx context.Context, d *domain.Delegation) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Delegation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByTraderID(ctx context.Context, traderID string) (*domain.Delegation, error) {
	if m.GetByTraderIDFn != nil {
		return m.GetByTraderIDFn(ctx, traderID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Delegation, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, status)
	}
	return nil, context.Canceled
}

func (m *Repo) Update(ctx context.Context, d *domain.Delegation) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, d)
	}
	return nil
}
