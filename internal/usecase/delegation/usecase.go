package delegation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"credit-voucher-engine/internal/domain/delegation"
	"credit-voucher-engine/internal/domain/errs"
	"credit-voucher-engine/internal/usecase/occ"
	"credit-voucher-engine/pkg/clock"
	"credit-voucher-engine/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Usecase struct {
	repo        delegation.Repository
	clock       clock.Clock
	log         *zap.Logger
	maxAttempts int
}

func NewUsecase(r delegation.Repository, clk clock.Clock, log *zap.Logger, maxAttempts int) *Usecase {
	return &Usecase{repo: r, clock: clk, log: log, maxAttempts: maxAttempts}
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*DelegationDTO, error) {
	traderID := strings.TrimSpace(in.TraderID)
	if traderID == "" {
		return nil, errs.Invalid("trader_id", "is required")
	}
	if in.InitialBalance.IsNegative() {
		return nil, errs.Invalid("initial_balance", "must not be negative")
	}

	_, err := u.repo.GetByTraderID(ctx, traderID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("delegation for trader %s: %w", traderID, errs.ErrAlreadyExists)
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	d := &delegation.Delegation{
		DelegationID:     id.NewID32(),
		TraderID:         traderID,
		TraderName:       strings.TrimSpace(in.TraderName),
		Status:           delegation.StatusPending,
		AvailableBalance: in.InitialBalance,
		Version:          1,
	}
	if err := u.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	u.log.Info("delegation created", zap.String("trader_id", traderID))
	return toDTO(d), nil
}

// Accept records the trader's agreement to front credit: pending -> accepted.
func (u *Usecase) Accept(ctx context.Context, traderID string) (*DelegationDTO, error) {
	var out *delegation.Delegation
	err := occ.Retry(ctx, u.log, u.maxAttempts, "delegation", traderID, func() error {
		d, err := u.repo.GetByTraderID(ctx, traderID)
		if err != nil {
			return err
		}
		if d.Status != delegation.StatusPending {
			return &errs.TransitionError{
				Entity:    "delegation",
				ID:        traderID,
				Operation: "accept",
				Current:   string(d.Status),
				Allowed:   []string{string(delegation.StatusPending)},
			}
		}
		now := u.clock.Now()
		d.Status = delegation.StatusAccepted
		d.AcceptedAt = &now
		if err := u.repo.Update(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("delegation accepted", zap.String("trader_id", traderID))
	return toDTO(out), nil
}

func (u *Usecase) TopUp(ctx context.Context, traderID string, amount decimal.Decimal) (*DelegationDTO, error) {
	if !amount.IsPositive() {
		return nil, errs.Invalid("amount", "must be greater than zero")
	}
	var out *delegation.Delegation
	err := occ.Retry(ctx, u.log, u.maxAttempts, "delegation", traderID, func() error {
		d, err := u.repo.GetByTraderID(ctx, traderID)
		if err != nil {
			return err
		}
		d.AvailableBalance = d.AvailableBalance.Add(amount)
		if err := u.repo.Update(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDTO(out), nil
}

func (u *Usecase) Get(ctx context.Context, traderID string) (*DelegationDTO, error) {
	d, err := u.repo.GetByTraderID(ctx, traderID)
	if err != nil {
		return nil, err
	}
	return toDTO(d), nil
}

// ListAccepted is the directory of traders that can currently front credit.
func (u *Usecase) ListAccepted(ctx context.Context) ([]*DelegationDTO, error) {
	ds, err := u.repo.ListByStatus(ctx, delegation.StatusAccepted)
	if err != nil {
		return nil, err
	}
	out := make([]*DelegationDTO, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDTO(d))
	}
	return out, nil
}

// ApproveOnBehalf debits amount from the trader's available balance through
// repo, which the caller binds to the loan approval transaction. A version
// conflict is returned as-is so the caller retries the whole approval.
func (u *Usecase) ApproveOnBehalf(ctx context.Context, repo delegation.Repository, traderID string, amount decimal.Decimal) error {
	d, err := repo.GetByTraderID(ctx, traderID)
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("trader %s: %w", traderID, errs.ErrNoAcceptedDelegation)
	}
	if err != nil {
		return err
	}
	if d.Status != delegation.StatusAccepted {
		return fmt.Errorf("trader %s delegation is %s: %w", traderID, d.Status, errs.ErrNoAcceptedDelegation)
	}
	if d.AvailableBalance.LessThan(amount) {
		return &errs.InsufficientTraderBalanceError{
			TraderID:  traderID,
			Requested: amount,
			Available: d.AvailableBalance,
		}
	}
	d.AvailableBalance = d.AvailableBalance.Sub(amount)
	if err := repo.Update(ctx, d); err != nil {
		return err
	}
	u.log.Info("trader balance debited",
		zap.String("trader_id", traderID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("available", d.AvailableBalance.StringFixed(2)))
	return nil
}

// Refund credits a previous on-behalf debit back, inside the caller's tx.
func (u *Usecase) Refund(ctx context.Context, repo delegation.Repository, traderID string, amount decimal.Decimal) error {
	d, err := repo.GetByTraderID(ctx, traderID)
	if err != nil {
		return err
	}
	d.AvailableBalance = d.AvailableBalance.Add(amount)
	if err := repo.Update(ctx, d); err != nil {
		return err
	}
	u.log.Info("trader balance refunded",
		zap.String("trader_id", traderID),
		zap.String("amount", amount.StringFixed(2)))
	return nil
}
