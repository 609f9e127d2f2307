package delegation

import "context"

type Repository interface {
	Create(ctx context.Context, d *Delegation) error
	GetByTraderID(ctx context.Context, traderID string) (*Delegation, error)
	ListByStatus(ctx context.Context, status Status) ([]*Delegation, error)
	// Update is a compare-and-swap on Version.
	Update(ctx context.Context, d *Delegation) error
}
