package voucher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"credit-voucher-engine/internal/domain/credit"
	"credit-voucher-engine/internal/domain/errs"
	"credit-voucher-engine/internal/domain/event"
	"credit-voucher-engine/internal/domain/loan"
	"credit-voucher-engine/internal/domain/uow"
	"credit-voucher-engine/internal/domain/voucher"
	"credit-voucher-engine/internal/infrastructure/metrics"
	"credit-voucher-engine/internal/usecase/occ"
	"credit-voucher-engine/internal/usecase/publish"
	"credit-voucher-engine/pkg/clock"
	"credit-voucher-engine/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultIssueWindow = 48 * time.Hour

type Options struct {
	IssueWindow time.Duration
	MaxAttempts int
	// SweepBatch bounds how many rows expire/markOverdue load per round.
	SweepBatch int
}

type Usecase struct {
	vouchers voucher.Repository
	uow      uow.UnitOfWork
	clock    clock.Clock
	notifier event.Notifier
	log      *zap.Logger
	opts     Options
}

func NewUsecase(vouchers voucher.Repository, tx uow.UnitOfWork, clk clock.Clock, n event.Notifier, log *zap.Logger, opts Options) *Usecase {
	if opts.IssueWindow <= 0 {
		opts.IssueWindow = DefaultIssueWindow
	}
	if opts.SweepBatch <= 0 {
		opts.SweepBatch = 200
	}
	return &Usecase{vouchers: vouchers, uow: tx, clock: clk, notifier: n, log: log, opts: opts}
}

func validateIssue(in IssueInput) (voucher.Type, error) {
	t, ok := voucher.ParseType(in.VoucherType)
	if !ok {
		return "", errs.Invalid("voucher_type", fmt.Sprintf("unknown voucher type %q", in.VoucherType))
	}
	if in.CreditLimit.IsNegative() {
		return "", errs.Invalid("credit_limit", "must not be negative")
	}
	if in.RepaymentDays <= 0 {
		return "", errs.Invalid("repayment_days", "must be greater than zero")
	}
	return t, nil
}

// IssueWith mints an ACTIVE voucher for l inside the caller's transaction.
// The caller has already checked that l may carry a voucher.
func (u *Usecase) IssueWith(ctx context.Context, r uow.Repos, l *loan.Loan, in IssueInput) (*voucher.Voucher, error) {
	t, err := validateIssue(in)
	if err != nil {
		return nil, err
	}
	pct, _ := t.DiscountPercentage()
	now := u.clock.Now()
	v := &voucher.Voucher{
		VoucherID:          id.NewID32(),
		VoucherCode:        id.NewVoucherCode(),
		LoanID:             l.LoanID,
		RestaurantID:       l.RestaurantID,
		Type:               t,
		DiscountPercentage: pct,
		CreditLimit:        in.CreditLimit,
		UsedCredit:         decimal.Zero,
		Status:             voucher.StatusActive,
		IssuedAt:           now,
		ExpiryDate:         now.Add(u.opts.IssueWindow),
		RepaymentDays:      in.RepaymentDays,
		Version:            1,
	}
	if err := r.Vouchers.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Issue mints an additional voucher for an APPROVED or DISBURSED loan.
func (u *Usecase) Issue(ctx context.Context, in IssueInput) (*VoucherDTO, error) {
	if _, err := validateIssue(in); err != nil {
		return nil, err
	}
	var out *voucher.Voucher
	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if err := l.Guard(loan.OpIssueVoucher); err != nil {
			return err
		}
		v, err := u.IssueWith(ctx, r, l, in)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.Issued(ctx, out)
	return ToDTO(out, u.clock.Now()), nil
}

// Issued runs the post-commit side effects of a new voucher. Callers that
// minted through IssueWith call it once their transaction has committed.
func (u *Usecase) Issued(ctx context.Context, v *voucher.Voucher) {
	metrics.VoucherTransitions.WithLabelValues("issue", string(v.Status)).Inc()
	u.log.Info("voucher issued",
		zap.String("voucher_id", v.VoucherID),
		zap.String("loan_id", v.LoanID),
		zap.String("credit_limit", v.CreditLimit.StringFixed(2)),
		zap.Time("expiry_date", v.ExpiryDate))
	amount := v.CreditLimit
	publish.Event(ctx, u.notifier, u.log, event.Event{
		Type:         event.VoucherIssued,
		LoanID:       v.LoanID,
		VoucherID:    v.VoucherID,
		RestaurantID: v.RestaurantID,
		Amount:       &amount,
		OccurredAt:   v.IssuedAt,
	})
}

// consumable checks the time-derived status, not the stored one.
func consumable(v *voucher.Voucher, now time.Time) error {
	switch eff := v.EffectiveStatus(now); eff {
	case voucher.StatusActive, voucher.StatusUsed:
		return nil
	case voucher.StatusExpired:
		return fmt.Errorf("voucher %s expired at %s: %w",
			v.VoucherID, v.ExpiryDate.Format(time.RFC3339), errs.ErrVoucherExpired)
	default:
		return fmt.Errorf("voucher %s is %s: %w", v.VoucherID, eff, errs.ErrVoucherNotActive)
	}
}

// Consume applies amount of credit at checkout. The first use starts the
// repayment clock; later uses only accumulate used credit.
func (u *Usecase) Consume(ctx context.Context, voucherID string, amount decimal.Decimal) (*VoucherDTO, error) {
	if !amount.IsPositive() {
		return nil, errs.Invalid("amount", "must be greater than zero")
	}

	var (
		out   *voucher.Voucher
		first bool
	)
	err := occ.Retry(ctx, u.log, u.opts.MaxAttempts, "voucher", voucherID, func() error {
		v, err := u.vouchers.GetByVoucherID(ctx, voucherID)
		if err != nil {
			return err
		}
		now := u.clock.Now()
		if err := consumable(v, now); err != nil {
			return err
		}
		remaining := credit.RemainingCredit(v)
		if amount.GreaterThan(remaining) {
			return &errs.InsufficientCreditError{VoucherID: voucherID, Requested: amount, Remaining: remaining}
		}

		v.UsedCredit = v.UsedCredit.Add(amount)
		first = v.UsedAt == nil
		if first {
			usedAt := now
			due := now.AddDate(0, 0, v.RepaymentDays)
			v.UsedAt = &usedAt
			v.RepaymentDueDate = &due
		}
		v.Status = voucher.Target(voucher.OpConsume)
		if err := u.vouchers.Update(ctx, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.CreditConsumed.Add(amount.InexactFloat64())
	if first {
		metrics.VoucherTransitions.WithLabelValues(string(voucher.OpConsume), string(out.Status)).Inc()
	}
	u.log.Info("voucher consumed",
		zap.String("voucher_id", voucherID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("used_credit", out.UsedCredit.StringFixed(2)),
		zap.Bool("first_use", first))
	return ToDTO(out, u.clock.Now()), nil
}

// Settle records full repayment. Once no live voucher of a disbursed loan is
// left unsettled, the loan settles in the same transaction.
func (u *Usecase) Settle(ctx context.Context, voucherID string) (*VoucherDTO, error) {
	var (
		out         *voucher.Voucher
		from        voucher.Status
		loanSettled *loan.Loan
	)
	err := occ.Retry(ctx, u.log, u.opts.MaxAttempts, "voucher", voucherID, func() error {
		loanSettled = nil
		return u.uow.WithinTx(ctx, func(r uow.Repos) error {
			v, err := r.Vouchers.GetByVoucherID(ctx, voucherID)
			if err != nil {
				return err
			}
			now := u.clock.Now()
			from = v.EffectiveStatus(now)
			if err := v.Guard(voucher.OpSettle, from); err != nil {
				return err
			}
			v.Status = voucher.StatusSettled
			v.SettledAt = &now
			if err := r.Vouchers.Update(ctx, v); err != nil {
				return err
			}
			out = v

			l, err := u.settleLoanIfDone(ctx, r, v.LoanID, now)
			if err != nil {
				return err
			}
			loanSettled = l
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.VoucherTransitions.WithLabelValues(string(voucher.OpSettle), string(out.Status)).Inc()
	u.log.Info("voucher settled",
		zap.String("voucher_id", voucherID),
		zap.String("from", string(from)),
		zap.String("to", string(out.Status)))
	used := out.UsedCredit
	publish.Event(ctx, u.notifier, u.log, event.Event{
		Type:         event.VoucherSettled,
		LoanID:       out.LoanID,
		VoucherID:    out.VoucherID,
		RestaurantID: out.RestaurantID,
		Amount:       &used,
		OccurredAt:   *out.SettledAt,
	})
	if loanSettled != nil {
		u.loanSettled(ctx, loanSettled)
	}
	return ToDTO(out, u.clock.Now()), nil
}

// settleLoanIfDone returns the loan when this call moved it to SETTLED.
// Settled and expired vouchers carry no open debt. A disbursed loan that still
// has open debt gets its version bumped anyway, so two transactions closing
// sibling vouchers conflict instead of each missing the other's write.
func (u *Usecase) settleLoanIfDone(ctx context.Context, r uow.Repos, loanID string, now time.Time) (*loan.Loan, error) {
	l, err := r.Loans.GetByLoanID(ctx, loanID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !loan.Can(loan.OpSettle, l.Status) {
		return nil, nil
	}
	vs, err := r.Vouchers.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	done := true
	for _, v := range vs {
		if eff := v.EffectiveStatus(now); eff != voucher.StatusSettled && eff != voucher.StatusExpired {
			done = false
			break
		}
	}
	if done {
		l.Status = loan.Target(loan.OpSettle)
		l.StatusUpdatedAt = now
	}
	if err := r.Loans.Update(ctx, l); err != nil {
		return nil, err
	}
	if !done {
		return nil, nil
	}
	return l, nil
}

func (u *Usecase) loanSettled(ctx context.Context, l *loan.Loan) {
	metrics.LoanTransitions.WithLabelValues(string(loan.OpSettle), string(l.Status)).Inc()
	u.log.Info("loan settled", zap.String("loan_id", l.LoanID))
	publish.Event(ctx, u.notifier, u.log, event.Event{
		Type:         event.LoanSettled,
		LoanID:       l.LoanID,
		RestaurantID: l.RestaurantID,
		OccurredAt:   l.StatusUpdatedAt,
	})
}

// Suspend is an administrative freeze; a suspended voucher is never reactivated.
func (u *Usecase) Suspend(ctx context.Context, voucherID, reason string) (*VoucherDTO, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errs.Invalid("reason", "is required")
	}
	var (
		out  *voucher.Voucher
		from voucher.Status
	)
	err := occ.Retry(ctx, u.log, u.opts.MaxAttempts, "voucher", voucherID, func() error {
		v, err := u.vouchers.GetByVoucherID(ctx, voucherID)
		if err != nil {
			return err
		}
		from = v.EffectiveStatus(u.clock.Now())
		if err := v.Guard(voucher.OpSuspend, from); err != nil {
			return err
		}
		v.Status = voucher.StatusSuspended
		v.SuspendReason = &reason
		if err := u.vouchers.Update(ctx, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.VoucherTransitions.WithLabelValues(string(voucher.OpSuspend), string(out.Status)).Inc()
	u.log.Info("voucher suspended",
		zap.String("voucher_id", voucherID),
		zap.String("from", string(from)),
		zap.String("reason", reason))
	publish.Event(ctx, u.notifier, u.log, event.Event{
		Type:         event.VoucherSuspended,
		LoanID:       out.LoanID,
		VoucherID:    out.VoucherID,
		RestaurantID: out.RestaurantID,
		Reason:       reason,
		OccurredAt:   u.clock.Now(),
	})
	return ToDTO(out, u.clock.Now()), nil
}

func (u *Usecase) Get(ctx context.Context, voucherID string) (*VoucherDTO, error) {
	v, err := u.vouchers.GetByVoucherID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	return ToDTO(v, u.clock.Now()), nil
}

func (u *Usecase) GetByCode(ctx context.Context, code string) (*VoucherDTO, error) {
	v, err := u.vouchers.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	return ToDTO(v, u.clock.Now()), nil
}

func (u *Usecase) ListByLoan(ctx context.Context, loanID string) ([]*VoucherDTO, error) {
	vs, err := u.vouchers.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	now := u.clock.Now()
	out := make([]*VoucherDTO, 0, len(vs))
	for _, v := range vs {
		out = append(out, ToDTO(v, now))
	}
	return out, nil
}

// Quote prices a checkout without consuming anything.
func (u *Usecase) Quote(ctx context.Context, voucherID string, subtotal decimal.Decimal) (*QuoteDTO, error) {
	if !subtotal.IsPositive() {
		return nil, errs.Invalid("order_subtotal", "must be greater than zero")
	}
	v, err := u.vouchers.GetByVoucherID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if err := consumable(v, u.clock.Now()); err != nil {
		return nil, err
	}
	discount := credit.DiscountAmount(v, subtotal)
	return &QuoteDTO{
		VoucherID:          v.VoucherID,
		OrderSubtotal:      subtotal,
		DiscountPercentage: v.DiscountPercentage,
		DiscountAmount:     discount,
		RemainingCredit:    credit.RemainingCredit(v),
		PayableAmount:      subtotal.Sub(discount),
	}, nil
}
