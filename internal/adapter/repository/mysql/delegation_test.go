package mysql

import (
	"context"
	"errors"
	"testing"

	delegationDomain "credit-voucher-engine/internal/domain/delegation"
	"credit-voucher-engine/internal/domain/errs"
	"credit-voucher-engine/pkg/id"

	"github.com/shopspring/decimal"
)

func makeDelegation(traderID, name string, st delegationDomain.Status) *delegationDomain.Delegation {
	return &delegationDomain.Delegation{
		DelegationID:     id.NewID32(),
		TraderID:         traderID,
		TraderName:       name,
		Status:           st,
		AvailableBalance: decimal.NewFromInt(100_000),
	}
}

func TestDelegation_CreateGetList(t *testing.T) {
	repo := NewDelegationRepository(openTestDB(t))
	ctx := context.Background()

	_ = repo.Create(ctx, makeDelegation("T1", "Budi", delegationDomain.StatusAccepted))
	_ = repo.Create(ctx, makeDelegation("T2", "Ani", delegationDomain.StatusAccepted))
	_ = repo.Create(ctx, makeDelegation("T3", "Cici", delegationDomain.StatusPending))

	got, err := repo.GetByTraderID(ctx, "T1")
	if err != nil || got.TraderName != "Budi" {
		t.Fatalf("GetByTraderID: %+v err=%v", got, err)
	}
	if _, err := repo.GetByTraderID(ctx, "T9"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	accepted, err := repo.ListByStatus(ctx, delegationDomain.StatusAccepted)
	if err != nil || len(accepted) != 2 {
		t.Fatalf("ListByStatus: n=%d err=%v", len(accepted), err)
	}
	if accepted[0].TraderName != "Ani" {
		t.Fatalf("expected name order, got %s first", accepted[0].TraderName)
	}
}

func TestDelegation_UniquePerTrader(t *testing.T) {
	repo := NewDelegationRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, makeDelegation("T1", "Budi", delegationDomain.StatusPending)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, makeDelegation("T1", "Budi again", delegationDomain.StatusPending)); err == nil {
		t.Fatalf("expected unique violation")
	}
}

func TestDelegation_Update_CAS(t *testing.T) {
	repo := NewDelegationRepository(openTestDB(t))
	ctx := context.Background()

	_ = repo.Create(ctx, makeDelegation("T1", "Budi", delegationDomain.StatusAccepted))

	a, _ := repo.GetByTraderID(ctx, "T1")
	b, _ := repo.GetByTraderID(ctx, "T1")

	a.AvailableBalance = a.AvailableBalance.Sub(decimal.NewFromInt(70_000))
	if err := repo.Update(ctx, a); err != nil {
		t.Fatalf("debit a: %v", err)
	}
	b.AvailableBalance = b.AvailableBalance.Sub(decimal.NewFromInt(70_000))
	if err := repo.Update(ctx, b); !errors.Is(err, errs.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, _ := repo.GetByTraderID(ctx, "T1")
	if !got.AvailableBalance.Equal(decimal.NewFromInt(30_000)) {
		t.Fatalf("balance = %s, want 30000", got.AvailableBalance)
	}
}
