package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"credit-voucher-engine/internal/domain/errs"
	loanDomain "credit-voucher-engine/internal/domain/loan"
	"credit-voucher-engine/internal/domain/uow"
	"credit-voucher-engine/pkg/id"

	"github.com/shopspring/decimal"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	loanID := id.NewID32()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		l := makeLoan(loanID, "R1", loanDomain.StatusApproved)
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if l.ID == 0 {
			t.Fatalf("loan auto ID not set")
		}
		if err := r.Approvals.Create(ctx, makeApproval("apr-commit", l.ID, time.Now())); err != nil {
			return err
		}
		return r.Vouchers.Create(ctx, makeVoucher(loanID, time.Now().UTC()))
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	l, err := NewLoanRepository(db).GetByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
	if _, err := NewApprovalRepository(db).GetByLoanID(ctx, l.ID); err != nil {
		t.Fatalf("approval not visible after commit: %v", err)
	}
	if vs, _ := NewVoucherRepository(db).ListByLoanID(ctx, loanID); len(vs) != 1 {
		t.Fatalf("voucher not visible after commit")
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db)
	sentinel := errors.New("fail")
	loanID := id.NewID32()

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, makeLoan(loanID, "R1", loanDomain.StatusPending)); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if _, err := NewLoanRepository(db).GetByLoanID(ctx, loanID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("loan should not exist after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	loanRepo := NewLoanRepository(db)
	l := makeLoan(id.NewID32(), "R1", loanDomain.StatusPending)
	_ = loanRepo.Create(ctx, l)

	guow := NewGormUoW(db)
	err := guow.WithinLoanTx(ctx, l.LoanID, func(r uow.Repos, got *loanDomain.Loan) error {
		if got.LoanID != l.LoanID {
			t.Fatalf("wrong loan loaded")
		}
		got.Status = loanDomain.StatusApproved
		got.ApprovedAmount = decimal.NewNullDecimal(decimal.NewFromInt(40_000))
		return r.Loans.Update(ctx, got)
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}

	after, _ := loanRepo.GetByLoanID(ctx, l.LoanID)
	if after.Status != loanDomain.StatusApproved || !after.ApprovedAmount.Valid {
		t.Fatalf("update not committed: %+v", after)
	}

	err = guow.WithinLoanTx(ctx, "missing", func(uow.Repos, *loanDomain.Loan) error {
		t.Fatalf("fn must not run for a missing loan")
		return nil
	})
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
