package loan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"credit-voucher-engine/internal/domain/delegation"
	"credit-voucher-engine/internal/domain/errs"
	"credit-voucher-engine/internal/domain/event"
	"credit-voucher-engine/internal/domain/loan"
	"credit-voucher-engine/internal/domain/uow"
	"credit-voucher-engine/internal/infrastructure/metrics"
	"credit-voucher-engine/internal/usecase/occ"
	"credit-voucher-engine/internal/usecase/publish"
	"credit-voucher-engine/pkg/clock"
	"credit-voucher-engine/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Refunder returns an on-behalf debit to the trader inside the caller's tx.
type Refunder interface {
	Refund(ctx context.Context, repo delegation.Repository, traderID string, amount decimal.Decimal) error
}

type Usecase struct {
	repo        loan.Repository
	uow         uow.UnitOfWork
	refunds     Refunder
	clock       clock.Clock
	notifier    event.Notifier
	log         *zap.Logger
	maxAttempts int
}

func NewUsecase(r loan.Repository, tx uow.UnitOfWork, refunds Refunder, clk clock.Clock, n event.Notifier, log *zap.Logger, maxAttempts int) *Usecase {
	return &Usecase{repo: r, uow: tx, refunds: refunds, clock: clk, notifier: n, log: log, maxAttempts: maxAttempts}
}

func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*LoanDTO, error) {
	restaurantID := strings.TrimSpace(in.RestaurantID)
	if restaurantID == "" || len(restaurantID) > 32 {
		return nil, errs.Invalid("restaurant_id", "is required and at most 32 characters")
	}
	if !in.RequestedAmount.IsPositive() {
		return nil, errs.Invalid("requested_amount", "must be greater than zero")
	}
	if in.RepaymentDays <= 0 {
		return nil, errs.Invalid("repayment_days", "must be greater than zero")
	}

	// One open application per restaurant.
	open, err := u.repo.GetOpenLoanByRestaurantID(ctx, restaurantID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("restaurant %s has loan %s in status %s: %w",
			restaurantID, open.LoanID, open.Status, errs.ErrPendingLoanExists)
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	now := u.clock.Now()
	l := &loan.Loan{
		LoanID:          id.NewID32(),
		RestaurantID:    restaurantID,
		RequestedAmount: in.RequestedAmount,
		RepaymentDays:   in.RepaymentDays,
		Status:          loan.StatusPending,
		StatusUpdatedAt: now,
		Version:         1,
		CreatedAt:       now,
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	metrics.LoanTransitions.WithLabelValues("submit", string(l.Status)).Inc()
	u.log.Info("loan submitted",
		zap.String("loan_id", l.LoanID),
		zap.String("restaurant_id", restaurantID),
		zap.String("requested_amount", l.RequestedAmount.StringFixed(2)))
	amount := l.RequestedAmount
	publish.Event(ctx, u.notifier, u.log, event.Event{
		Type:         event.LoanSubmitted,
		LoanID:       l.LoanID,
		RestaurantID: restaurantID,
		Amount:       &amount,
		OccurredAt:   now,
	})
	return ToDTO(l), nil
}

// Accept is the operator acknowledgment step before approval.
func (u *Usecase) Accept(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.transition(ctx, loanID, loan.OpAccept, nil)
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

func (u *Usecase) Reject(ctx context.Context, loanID, reason string) (*LoanDTO, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errs.Invalid("reason", "is required")
	}
	l, err := u.transition(ctx, loanID, loan.OpReject, func(l *loan.Loan) {
		l.RejectionReason = &reason
	})
	if err != nil {
		return nil, err
	}
	publish.Event(ctx, u.notifier, u.log, event.Event{
		Type:         event.LoanRejected,
		LoanID:       l.LoanID,
		RestaurantID: l.RestaurantID,
		Reason:       reason,
		OccurredAt:   l.StatusUpdatedAt,
	})
	return ToDTO(l), nil
}

// Disburse is safe to retry: an already disbursed loan is returned unchanged.
func (u *Usecase) Disburse(ctx context.Context, loanID string) (*LoanDTO, error) {
	var (
		out     *loan.Loan
		already bool
	)
	err := occ.Retry(ctx, u.log, u.maxAttempts, "loan", loanID, func() error {
		l, err := u.repo.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		if l.Status == loan.StatusDisbursed {
			out, already = l, true
			return nil
		}
		if err := u.apply(ctx, l, loan.OpDisburse, nil); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	if already {
		u.log.Info("loan already disbursed", zap.String("loan_id", loanID))
		return ToDTO(out), nil
	}
	u.transitioned(out, loan.OpDisburse, loan.StatusApproved)
	publish.Event(ctx, u.notifier, u.log, event.Event{
		Type:         event.LoanDisbursed,
		LoanID:       out.LoanID,
		RestaurantID: out.RestaurantID,
		Amount:       nullAmount(out.ApprovedAmount),
		OccurredAt:   out.StatusUpdatedAt,
	})
	return ToDTO(out), nil
}

// Delete soft-deletes a loan that has no financial history, together with its
// vouchers and approval. An on-behalf approval is refunded to the trader.
func (u *Usecase) Delete(ctx context.Context, loanID, deletedBy string) error {
	var from loan.Status
	err := occ.Retry(ctx, u.log, u.maxAttempts, "loan", loanID, func() error {
		return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
			from = l.Status
			if l.Status.HasFinancialHistory() {
				return &errs.IrreversibleStateError{LoanID: l.LoanID, Status: string(l.Status)}
			}
			if err := l.Guard(loan.OpDelete); err != nil {
				return err
			}

			if l.Status == loan.StatusApproved {
				if err := u.undoApproval(ctx, r, l, deletedBy); err != nil {
					return err
				}
			}
			return r.Loans.Delete(ctx, l, deletedBy)
		})
	})
	if err != nil {
		return err
	}
	metrics.LoanTransitions.WithLabelValues(string(loan.OpDelete), string(from)).Inc()
	u.log.Info("loan deleted",
		zap.String("loan_id", loanID),
		zap.String("status", string(from)),
		zap.String("deleted_by", deletedBy))
	return nil
}

func (u *Usecase) undoApproval(ctx context.Context, r uow.Repos, l *loan.Loan, deletedBy string) error {
	a, err := r.Approvals.GetByLoanID(ctx, l.ID)
	switch {
	case errors.Is(err, errs.ErrNotFound):
	case err != nil:
		return err
	default:
		if a.OnBehalfOfTraderID != nil && u.refunds != nil {
			if err := u.refunds.Refund(ctx, r.Delegations, *a.OnBehalfOfTraderID, a.ApprovedAmount); err != nil {
				return err
			}
		}
		if err := r.Approvals.DeleteByLoanID(ctx, l.ID, deletedBy); err != nil {
			return err
		}
	}
	return r.Vouchers.DeleteByLoanID(ctx, l.LoanID)
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return ToDTO(l), nil
}

func (u *Usecase) List(ctx context.Context, in ListInput) ([]*LoanDTO, error) {
	f := loan.ListFilter{RestaurantID: in.RestaurantID, Status: loan.Status(strings.ToLower(in.Status)), Limit: in.Limit}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	ls, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*LoanDTO, 0, len(ls))
	for _, l := range ls {
		out = append(out, ToDTO(l))
	}
	return out, nil
}

// transition runs one guarded, version-checked status change with retries.
func (u *Usecase) transition(ctx context.Context, loanID string, op loan.Operation, mutate func(*loan.Loan)) (*loan.Loan, error) {
	var (
		out  *loan.Loan
		from loan.Status
	)
	err := occ.Retry(ctx, u.log, u.maxAttempts, "loan", loanID, func() error {
		l, err := u.repo.GetByLoanID(ctx, loanID)
		if err != nil {
			return err
		}
		from = l.Status
		if err := u.apply(ctx, l, op, mutate); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.transitioned(out, op, from)
	return out, nil
}

func (u *Usecase) apply(ctx context.Context, l *loan.Loan, op loan.Operation, mutate func(*loan.Loan)) error {
	if err := l.Guard(op); err != nil {
		return err
	}
	l.Status = loan.Target(op)
	l.StatusUpdatedAt = u.clock.Now()
	if mutate != nil {
		mutate(l)
	}
	return u.repo.Update(ctx, l)
}

func (u *Usecase) transitioned(l *loan.Loan, op loan.Operation, from loan.Status) {
	metrics.LoanTransitions.WithLabelValues(string(op), string(l.Status)).Inc()
	u.log.Info("loan transitioned",
		zap.String("loan_id", l.LoanID),
		zap.String("operation", string(op)),
		zap.String("from", string(from)),
		zap.String("to", string(l.Status)))
}

func nullAmount(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
