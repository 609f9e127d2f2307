package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"credit-voucher-engine/internal/adapter/repository/mysql"
	"credit-voucher-engine/internal/domain/approval"
	"credit-voucher-engine/internal/domain/delegation"
	"credit-voucher-engine/internal/domain/errs"
	"credit-voucher-engine/internal/domain/loan"
	"credit-voucher-engine/internal/domain/uow"
	"credit-voucher-engine/internal/domain/voucher"
	"credit-voucher-engine/internal/testutil/approvalmock"
	"credit-voucher-engine/internal/testutil/delegationmock"
	"credit-voucher-engine/internal/testutil/loanmock"
	"credit-voucher-engine/internal/testutil/sqlitedb"
	"credit-voucher-engine/internal/testutil/uowmock"
	"credit-voucher-engine/internal/testutil/vouchermock"
	delegationUC "credit-voucher-engine/internal/usecase/delegation"
	voucherUC "credit-voucher-engine/internal/usecase/voucher"
	"credit-voucher-engine/pkg/clock"
	"credit-voucher-engine/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func trader(s string) *string { return &s }

func TestUsecase_Approve(t *testing.T) {
	base := ApproveInput{
		LoanID:         "LN-123",
		ApprovedAmount: decimal.NewFromInt(40_000),
		RepaymentDays:  30,
		VoucherType:    "DISCOUNT_50",
		ApprovedBy:     "ops-1",
	}

	loanIn := func(st loan.Status) *loan.Loan {
		return &loan.Loan{ID: 777, LoanID: "LN-123", RestaurantID: "R1", Status: st, Version: 1}
	}

	type deps struct {
		loans       *loanmock.Repo
		apprs       *approvalmock.Repo
		vouchers    *vouchermock.Repo
		delegations *delegationmock.Repo
	}
	build := func(d deps) *Usecase {
		clk := clock.NewMock(now)
		repos := uow.Repos{Loans: d.loans, Approvals: d.apprs, Vouchers: d.vouchers, Delegations: d.delegations}
		tx := uowmock.Passthrough(repos)
		issuer := voucherUC.NewUsecase(d.vouchers, tx, clk, nil, zap.NewNop(), voucherUC.Options{IssueWindow: 48 * time.Hour})
		coord := delegationUC.NewUsecase(d.delegations, clk, zap.NewNop(), 3)
		return NewUsecase(tx, issuer, coord, clk, nil, zap.NewNop(), 3)
	}
	fresh := func(st loan.Status) deps {
		return deps{
			loans: &loanmock.Repo{
				GetByLoanIDFn: func(context.Context, string) (*loan.Loan, error) { return loanIn(st), nil },
			},
			apprs: &approvalmock.Repo{
				GetByLoanIDFn: func(context.Context, uint64) (*approval.Approval, error) { return nil, errs.ErrNotFound },
			},
			vouchers:    &vouchermock.Repo{},
			delegations: &delegationmock.Repo{},
		}
	}

	tests := []struct {
		name    string
		in      ApproveInput
		deps    func() deps
		wantErr error
		check   func(t *testing.T, dto *ApprovalDTO)
	}{
		{
			name: "pending -> approved issues voucher",
			in:   base,
			deps: func() deps {
				d := fresh(loan.StatusPending)
				d.loans.UpdateFn = func(_ context.Context, l *loan.Loan) error {
					if l.Status != loan.StatusApproved || !l.ApprovedAmount.Decimal.Equal(decimal.NewFromInt(40_000)) {
						t.Fatalf("loan not approved: %+v", l)
					}
					return nil
				}
				d.apprs.CreateFn = func(_ context.Context, a *approval.Approval) error {
					if a.LoanID != 777 || a.VoucherType != "discount_50" || a.ApprovedBy != "ops-1" {
						t.Fatalf("approval mismatch: %+v", a)
					}
					return nil
				}
				return d
			},
			check: func(t *testing.T, dto *ApprovalDTO) {
				assert.Equal(t, "LN-123", dto.LoanID)
				assert.Equal(t, loan.StatusApproved, dto.LoanStatus)
				require.NotNil(t, dto.Voucher)
				assert.Equal(t, voucher.StatusActive, dto.Voucher.Status)
				assert.Equal(t, voucher.StatusActive, dto.Voucher.EffectiveStatus)
				assert.NotEmpty(t, dto.Voucher.AllowedActions)
				assert.True(t, dto.Voucher.RemainingCredit.Equal(decimal.NewFromInt(40_000)))
				assert.Equal(t, 50, dto.Voucher.DiscountPercentage)
				assert.True(t, dto.Voucher.CreditLimit.Equal(decimal.NewFromInt(40_000)))
				assert.True(t, dto.Voucher.ExpiryDate.Equal(now.Add(48*time.Hour)))
			},
		},
		{
			name: "accepted -> approved",
			in:   base,
			deps: func() deps { return fresh(loan.StatusAccepted) },
			check: func(t *testing.T, dto *ApprovalDTO) {
				assert.Equal(t, loan.StatusApproved, dto.LoanStatus)
			},
		},
		{
			name:    "rejected loan cannot be approved",
			in:      base,
			deps:    func() deps { return fresh(loan.StatusRejected) },
			wantErr: errs.ErrInvalidTransition,
		},
		{
			name:    "already approved loan",
			in:      base,
			deps:    func() deps { return fresh(loan.StatusApproved) },
			wantErr: errs.ErrInvalidTransition,
		},
		{
			name: "existing approval record",
			in:   base,
			deps: func() deps {
				d := fresh(loan.StatusPending)
				d.apprs.GetByLoanIDFn = func(context.Context, uint64) (*approval.Approval, error) {
					return &approval.Approval{ApprovalID: "APR-1"}, nil
				}
				return d
			},
			wantErr: errs.ErrAlreadyApproved,
		},
		{
			name:    "unknown voucher type",
			in:      ApproveInput{LoanID: "LN-123", ApprovedAmount: decimal.NewFromInt(1), RepaymentDays: 1, VoucherType: "DISCOUNT_30"},
			deps:    func() deps { return fresh(loan.StatusPending) },
			wantErr: errs.ErrValidation,
		},
		{
			name:    "non-positive amount",
			in:      ApproveInput{LoanID: "LN-123", ApprovedAmount: decimal.Zero, RepaymentDays: 1, VoucherType: "DISCOUNT_10"},
			deps:    func() deps { return fresh(loan.StatusPending) },
			wantErr: errs.ErrValidation,
		},
		{
			name: "loan not found",
			in:   base,
			deps: func() deps {
				d := fresh(loan.StatusPending)
				d.loans.GetByLoanIDFn = func(context.Context, string) (*loan.Loan, error) { return nil, errs.ErrNotFound }
				return d
			},
			wantErr: errs.ErrNotFound,
		},
		{
			name: "approval lookup error bubbles",
			in:   base,
			deps: func() deps {
				d := fresh(loan.StatusPending)
				d.apprs.GetByLoanIDFn = func(context.Context, uint64) (*approval.Approval, error) { return nil, gorm.ErrInvalidDB }
				return d
			},
			wantErr: gorm.ErrInvalidDB,
		},
		{
			name: "on behalf without delegation",
			in:   func() ApproveInput { in := base; in.OnBehalfOfTraderID = trader("T1"); return in }(),
			deps: func() deps {
				d := fresh(loan.StatusPending)
				d.delegations.GetByTraderIDFn = func(context.Context, string) (*delegation.Delegation, error) {
					return nil, errs.ErrNotFound
				}
				d.loans.UpdateFn = func(context.Context, *loan.Loan) error {
					t.Fatalf("loan must not be written when the trader cannot front the credit")
					return nil
				}
				return d
			},
			wantErr: errs.ErrNoAcceptedDelegation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := build(tt.deps())
			dto, err := uc.Approve(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, dto)
			}
		})
	}
}

// sqlite-backed scenarios: the whole approval is one transaction.

type ledger struct {
	uc          *Usecase
	loans       *mysql.LoanRepository
	approvals   *mysql.ApprovalRepository
	vouchers    *mysql.VoucherRepository
	delegations *mysql.DelegationRepository
}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	db := sqlitedb.Open(t)
	clk := clock.NewMock(now)
	l := &ledger{
		loans:       mysql.NewLoanRepository(db),
		approvals:   mysql.NewApprovalRepository(db),
		vouchers:    mysql.NewVoucherRepository(db),
		delegations: mysql.NewDelegationRepository(db),
	}
	tx := mysql.NewGormUoW(db)
	issuer := voucherUC.NewUsecase(l.vouchers, tx, clk, nil, zap.NewNop(), voucherUC.Options{IssueWindow: 48 * time.Hour})
	coord := delegationUC.NewUsecase(l.delegations, clk, zap.NewNop(), 3)
	l.uc = NewUsecase(tx, issuer, coord, clk, nil, zap.NewNop(), 3)
	return l
}

func (l *ledger) submitted(t *testing.T, st loan.Status) *loan.Loan {
	t.Helper()
	ln := &loan.Loan{
		LoanID:          id.NewID32(),
		RestaurantID:    "R1",
		RequestedAmount: decimal.NewFromInt(50_000),
		RepaymentDays:   30,
		Status:          st,
		StatusUpdatedAt: now,
	}
	require.NoError(t, l.loans.Create(context.Background(), ln))
	return ln
}

func (l *ledger) trader(t *testing.T, traderID string, st delegation.Status, balance int64) {
	t.Helper()
	require.NoError(t, l.delegations.Create(context.Background(), &delegation.Delegation{
		DelegationID:     id.NewID32(),
		TraderID:         traderID,
		Status:           st,
		AvailableBalance: decimal.NewFromInt(balance),
	}))
}

func TestApprove_Scenario_Discount50(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	ln := l.submitted(t, loan.StatusPending)

	dto, err := l.uc.Approve(ctx, ApproveInput{
		LoanID:         ln.LoanID,
		ApprovedAmount: decimal.NewFromInt(40_000),
		RepaymentDays:  30,
		VoucherType:    "DISCOUNT_50",
	})
	require.NoError(t, err)

	vs, err := l.vouchers.ListByLoanID(ctx, ln.LoanID)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.True(t, vs[0].CreditLimit.Equal(decimal.NewFromInt(40_000)))
	assert.Equal(t, 50, vs[0].DiscountPercentage)
	assert.Equal(t, voucher.StatusActive, vs[0].Status)
	assert.Equal(t, dto.Voucher.VoucherID, vs[0].VoucherID)

	after, _ := l.loans.GetByLoanID(ctx, ln.LoanID)
	assert.Equal(t, loan.StatusApproved, after.Status)

	_, err = l.approvals.GetByLoanID(ctx, ln.ID)
	require.NoError(t, err)
}

func TestApprove_OnBehalf_InsufficientBalance_NoPartialEffect(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	ln := l.submitted(t, loan.StatusAccepted)
	l.trader(t, "T1", delegation.StatusAccepted, 30_000)

	_, err := l.uc.Approve(ctx, ApproveInput{
		LoanID:             ln.LoanID,
		ApprovedAmount:     decimal.NewFromInt(40_000),
		RepaymentDays:      30,
		VoucherType:        "DISCOUNT_50",
		OnBehalfOfTraderID: trader("T1"),
	})
	var ib *errs.InsufficientTraderBalanceError
	require.ErrorAs(t, err, &ib)
	assert.True(t, ib.Available.Equal(decimal.NewFromInt(30_000)))

	after, _ := l.loans.GetByLoanID(ctx, ln.LoanID)
	assert.Equal(t, loan.StatusAccepted, after.Status)
	vs, _ := l.vouchers.ListByLoanID(ctx, ln.LoanID)
	assert.Empty(t, vs)
	_, err = l.approvals.GetByLoanID(ctx, ln.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	d, _ := l.delegations.GetByTraderID(ctx, "T1")
	assert.True(t, d.AvailableBalance.Equal(decimal.NewFromInt(30_000)))
}

func TestApprove_OnBehalf_DebitsTrader(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	ln := l.submitted(t, loan.StatusPending)
	l.trader(t, "T1", delegation.StatusAccepted, 100_000)

	dto, err := l.uc.Approve(ctx, ApproveInput{
		LoanID:             ln.LoanID,
		ApprovedAmount:     decimal.NewFromInt(40_000),
		RepaymentDays:      14,
		VoucherType:        "discount_20",
		OnBehalfOfTraderID: trader("T1"),
	})
	require.NoError(t, err)
	require.NotNil(t, dto.OnBehalfOfTraderID)

	d, _ := l.delegations.GetByTraderID(ctx, "T1")
	assert.True(t, d.AvailableBalance.Equal(decimal.NewFromInt(60_000)), "balance %s", d.AvailableBalance)

	a, err := l.approvals.GetByLoanID(ctx, ln.ID)
	require.NoError(t, err)
	require.NotNil(t, a.OnBehalfOfTraderID)
	assert.Equal(t, "T1", *a.OnBehalfOfTraderID)
}

func TestApprove_OnBehalf_PendingDelegation(t *testing.T) {
	l := newLedger(t)
	ln := l.submitted(t, loan.StatusPending)
	l.trader(t, "T1", delegation.StatusPending, 100_000)

	_, err := l.uc.Approve(context.Background(), ApproveInput{
		LoanID:             ln.LoanID,
		ApprovedAmount:     decimal.NewFromInt(1_000),
		RepaymentDays:      7,
		VoucherType:        "discount_10",
		OnBehalfOfTraderID: trader("T1"),
	})
	assert.ErrorIs(t, err, errs.ErrNoAcceptedDelegation)

	after, _ := l.loans.GetByLoanID(context.Background(), ln.LoanID)
	assert.Equal(t, loan.StatusPending, after.Status)
}
