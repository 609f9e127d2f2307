package voucher

import (
	"context"
	"errors"
	"time"

	"credit-voucher-engine/internal/domain/errs"
	"credit-voucher-engine/internal/domain/event"
	"credit-voucher-engine/internal/domain/loan"
	"credit-voucher-engine/internal/domain/uow"
	"credit-voucher-engine/internal/domain/voucher"
	"credit-voucher-engine/internal/infrastructure/metrics"
	"credit-voucher-engine/internal/usecase/publish"

	"go.uber.org/zap"
)

// Expire moves ACTIVE vouchers that were never used and are past their
// expiry date to EXPIRED. Re-running it with the same clock changes nothing.
func (u *Usecase) Expire(ctx context.Context) (int, error) {
	now := u.clock.Now()
	return u.sweep(ctx, "expire", now,
		u.vouchers.ListExpirable,
		func(v *voucher.Voucher) bool {
			return voucher.Can(voucher.OpExpire, v.Status) && v.UsedAt == nil && !now.Before(v.ExpiryDate)
		},
		voucher.OpExpire, event.VoucherExpired)
}

// MarkOverdue moves USED vouchers whose repayment due date has passed to MATURED.
func (u *Usecase) MarkOverdue(ctx context.Context) (int, error) {
	now := u.clock.Now()
	return u.sweep(ctx, "mark_overdue", now,
		u.vouchers.ListOverdue,
		func(v *voucher.Voucher) bool {
			return voucher.Can(voucher.OpMature, v.Status) && v.RepaymentDueDate != nil && now.After(*v.RepaymentDueDate)
		},
		voucher.OpMature, event.VoucherMatured)
}

type lister func(ctx context.Context, now time.Time, limit int) ([]*voucher.Voucher, error)

func (u *Usecase) sweep(
	ctx context.Context,
	task string,
	now time.Time,
	list lister,
	due func(*voucher.Voucher) bool,
	op voucher.Operation,
	evt event.Type,
) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		batch, err := list(ctx, now, u.opts.SweepBatch)
		if err != nil {
			return total, err
		}
		moved := 0
		for _, v := range batch {
			if !due(v) {
				continue
			}
			from := v.Status
			v.Status = voucher.Target(op)
			settled, err := u.persistSwept(ctx, op, v, now)
			if err != nil {
				if errors.Is(err, errs.ErrVersionConflict) {
					// a concurrent write to the voucher or its loan won; the next run re-evaluates it
					u.log.Warn("sweep: voucher changed underneath, skipped",
						zap.String("task", task), zap.String("voucher_id", v.VoucherID))
					continue
				}
				return total, err
			}
			moved++
			metrics.VoucherTransitions.WithLabelValues(string(op), string(v.Status)).Inc()
			u.log.Info("voucher "+string(v.Status),
				zap.String("voucher_id", v.VoucherID),
				zap.String("from", string(from)),
				zap.String("to", string(v.Status)))
			remaining := v.RemainingCredit()
			used := v.UsedCredit
			amount := &used
			if op == voucher.OpExpire {
				amount = &remaining
			}
			publish.Event(ctx, u.notifier, u.log, event.Event{
				Type:         evt,
				LoanID:       v.LoanID,
				VoucherID:    v.VoucherID,
				RestaurantID: v.RestaurantID,
				Amount:       amount,
				OccurredAt:   now,
			})
			if settled != nil {
				u.loanSettled(ctx, settled)
			}
		}
		total += moved
		if moved == 0 || len(batch) < u.opts.SweepBatch {
			break
		}
	}
	metrics.SchedulerSweeps.WithLabelValues(task).Add(float64(total))
	if total > 0 {
		u.log.Info("sweep done", zap.String("task", task), zap.Int("moved", total))
	}
	return total, nil
}

// persistSwept writes a sweep transition. An expiry can close the last open
// debt of a disbursed loan, so it re-checks the loan in the same transaction.
func (u *Usecase) persistSwept(ctx context.Context, op voucher.Operation, v *voucher.Voucher, now time.Time) (*loan.Loan, error) {
	if op != voucher.OpExpire {
		return nil, u.vouchers.Update(ctx, v)
	}
	var settled *loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Vouchers.Update(ctx, v); err != nil {
			return err
		}
		l, err := u.settleLoanIfDone(ctx, r, v.LoanID, now)
		if err != nil {
			return err
		}
		settled = l
		return nil
	})
	return settled, err
}
