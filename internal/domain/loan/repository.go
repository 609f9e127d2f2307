package loan

import "context"

type ListFilter struct {
	RestaurantID string
	Status       Status
	Limit        int
}

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// Open application = pending or accepted.
	GetOpenLoanByRestaurantID(ctx context.Context, restaurantID string) (*Loan, error)
	List(ctx context.Context, f ListFilter) ([]*Loan, error)
	// Update writes l only if its stored version still equals l.Version,
	// bumping the version on success; otherwise errs.ErrVersionConflict.
	Update(ctx context.Context, l *Loan) error
	Delete(ctx context.Context, l *Loan, deletedBy string) error
}
