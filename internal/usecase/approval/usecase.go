package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainApproval "credit-voucher-engine/internal/domain/approval"
	"credit-voucher-engine/internal/domain/delegation"
	"credit-voucher-engine/internal/domain/errs"
	"credit-voucher-engine/internal/domain/event"
	domainLoan "credit-voucher-engine/internal/domain/loan"
	"credit-voucher-engine/internal/domain/uow"
	"credit-voucher-engine/internal/domain/voucher"
	"credit-voucher-engine/internal/infrastructure/metrics"
	"credit-voucher-engine/internal/usecase/occ"
	"credit-voucher-engine/internal/usecase/publish"
	voucherUC "credit-voucher-engine/internal/usecase/voucher"
	"credit-voucher-engine/pkg/clock"
	"credit-voucher-engine/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VoucherIssuer mints the approval voucher inside the approval transaction.
type VoucherIssuer interface {
	IssueWith(ctx context.Context, r uow.Repos, l *domainLoan.Loan, in voucherUC.IssueInput) (*voucher.Voucher, error)
	Issued(ctx context.Context, v *voucher.Voucher)
}

// Coordinator reserves a trader's balance for an on-behalf approval.
type Coordinator interface {
	ApproveOnBehalf(ctx context.Context, repo delegation.Repository, traderID string, amount decimal.Decimal) error
}

type Usecase struct {
	uow         uow.UnitOfWork
	issuer      VoucherIssuer
	coordinator Coordinator
	clock       clock.Clock
	notifier    event.Notifier
	log         *zap.Logger
	maxAttempts int
}

// NewUsecase: the UoW spans loan, approval, voucher and trader writes.
func NewUsecase(tx uow.UnitOfWork, issuer VoucherIssuer, coordinator Coordinator, clk clock.Clock, n event.Notifier, log *zap.Logger, maxAttempts int) *Usecase {
	return &Usecase{uow: tx, issuer: issuer, coordinator: coordinator, clock: clk, notifier: n, log: log, maxAttempts: maxAttempts}
}

func validate(in ApproveInput) (voucher.Type, error) {
	if !in.ApprovedAmount.IsPositive() {
		return "", errs.Invalid("approved_amount", "must be greater than zero")
	}
	if in.RepaymentDays <= 0 {
		return "", errs.Invalid("repayment_days", "must be greater than zero")
	}
	t, ok := voucher.ParseType(in.VoucherType)
	if !ok {
		return "", errs.Invalid("voucher_type", fmt.Sprintf("unknown voucher type %q", in.VoucherType))
	}
	if in.OnBehalfOfTraderID != nil && strings.TrimSpace(*in.OnBehalfOfTraderID) == "" {
		return "", errs.Invalid("on_behalf_of_trader_id", "must not be blank")
	}
	return t, nil
}

// Approve moves a PENDING or ACCEPTED loan to APPROVED and issues its voucher.
// With OnBehalfOfTraderID the trader debit, the approval record, the loan
// update and the voucher commit together or not at all.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*ApprovalDTO, error) {
	t, err := validate(in)
	if err != nil {
		return nil, err
	}

	var (
		dto  *ApprovalDTO
		v    *voucher.Voucher
		from domainLoan.Status
	)
	err = occ.Retry(ctx, u.log, u.maxAttempts, "loan", in.LoanID, func() error {
		return u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
			from = l.Status
			if err := l.Guard(domainLoan.OpApprove); err != nil {
				return err
			}

			_, err := r.Approvals.GetByLoanID(ctx, l.ID)
			switch {
			case err == nil:
				return fmt.Errorf("loan %s: %w", l.LoanID, errs.ErrAlreadyApproved)
			case !errors.Is(err, errs.ErrNotFound):
				return err
			}

			// Reserve the trader's money before touching the loan.
			if in.OnBehalfOfTraderID != nil {
				if u.coordinator == nil {
					return fmt.Errorf("trader %s: %w", *in.OnBehalfOfTraderID, errs.ErrNoAcceptedDelegation)
				}
				if err := u.coordinator.ApproveOnBehalf(ctx, r.Delegations, *in.OnBehalfOfTraderID, in.ApprovedAmount); err != nil {
					return err
				}
			}

			now := u.clock.Now()
			l.Status = domainLoan.Target(domainLoan.OpApprove)
			l.StatusUpdatedAt = now
			l.ApprovedAmount = decimal.NewNullDecimal(in.ApprovedAmount)
			if err := r.Loans.Update(ctx, l); err != nil {
				return err
			}

			a := &domainApproval.Approval{
				ApprovalID:         id.NewID32(),
				LoanID:             l.ID, // numeric FK
				ApprovedAmount:     in.ApprovedAmount,
				RepaymentDays:      in.RepaymentDays,
				VoucherType:        string(t),
				Notes:              strings.TrimSpace(in.Notes),
				ApprovedBy:         in.ApprovedBy,
				OnBehalfOfTraderID: in.OnBehalfOfTraderID,
				ApprovedAt:         now,
			}
			if err := r.Approvals.Create(ctx, a); err != nil {
				return err
			}

			issued, err := u.issuer.IssueWith(ctx, r, l, voucherUC.IssueInput{
				LoanID:        l.LoanID,
				CreditLimit:   in.ApprovedAmount,
				VoucherType:   string(t),
				RepaymentDays: in.RepaymentDays,
			})
			if err != nil {
				return err
			}
			v = issued

			dto = &ApprovalDTO{
				ApprovalID:         a.ApprovalID,
				LoanID:             l.LoanID,
				LoanStatus:         l.Status,
				ApprovedAmount:     a.ApprovedAmount,
				RepaymentDays:      a.RepaymentDays,
				VoucherType:        a.VoucherType,
				Notes:              a.Notes,
				ApprovedBy:         a.ApprovedBy,
				OnBehalfOfTraderID: a.OnBehalfOfTraderID,
				ApprovedAt:         a.ApprovedAt,
				Voucher:            voucherUC.ToDTO(issued, now),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.LoanTransitions.WithLabelValues(string(domainLoan.OpApprove), string(dto.LoanStatus)).Inc()
	fields := []zap.Field{
		zap.String("loan_id", dto.LoanID),
		zap.String("from", string(from)),
		zap.String("to", string(dto.LoanStatus)),
		zap.String("approved_amount", dto.ApprovedAmount.StringFixed(2)),
	}
	if in.OnBehalfOfTraderID != nil {
		fields = append(fields, zap.String("on_behalf_of", *in.OnBehalfOfTraderID))
	}
	u.log.Info("loan approved", fields...)

	amount := dto.ApprovedAmount
	e := event.Event{
		Type:         event.LoanApproved,
		LoanID:       dto.LoanID,
		VoucherID:    v.VoucherID,
		RestaurantID: v.RestaurantID,
		Amount:       &amount,
		OccurredAt:   dto.ApprovedAt,
	}
	if in.OnBehalfOfTraderID != nil {
		e.TraderID = *in.OnBehalfOfTraderID
	}
	publish.Event(ctx, u.notifier, u.log, e)
	u.issuer.Issued(ctx, v)
	return dto, nil
}
