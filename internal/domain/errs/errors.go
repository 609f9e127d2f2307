// Package errs holds the error taxonomy shared by the loan and voucher
// lifecycle managers. Typed errors unwrap to a family sentinel, so callers
// can match with errors.Is and still pull details out with errors.As.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound                  = errors.New("record not found")
	ErrValidation                = errors.New("validation failed")
	ErrInvalidTransition         = errors.New("invalid state transition")
	ErrInsufficientCredit        = errors.New("insufficient credit")
	ErrInsufficientTraderBalance = errors.New("insufficient trader balance")
	ErrVoucherExpired            = errors.New("voucher expired")
	ErrVoucherNotActive          = errors.New("voucher not active")
	ErrNoAcceptedDelegation      = errors.New("no accepted delegation for trader")
	ErrIrreversibleState         = errors.New("irreversible state")
	ErrConcurrentModification    = errors.New("concurrent modification")
	ErrPendingLoanExists         = errors.New("restaurant already has an open loan application")
	ErrAlreadyApproved           = errors.New("loan already approved")
	ErrAlreadyExists             = errors.New("record already exists")

	// ErrVersionConflict is returned by the store when a versioned write lost
	// the race. Use cases retry on it and surface ConcurrentModificationError.
	ErrVersionConflict = errors.New("version conflict")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// TransitionError names the operation, the current status and the statuses
// the operation is legal from, so a UI can tell the user what has to happen first.
type TransitionError struct {
	Entity    string
	ID        string
	Operation string
	Current   string
	Allowed   []string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s %s in status %s: requires status %s",
		e.Operation, e.Entity, e.ID, e.Current, strings.Join(e.Allowed, " or "))
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

type InsufficientCreditError struct {
	VoucherID string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("voucher %s: requested %s exceeds remaining credit %s",
		e.VoucherID, e.Requested.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *InsufficientCreditError) Unwrap() error { return ErrInsufficientCredit }

type InsufficientTraderBalanceError struct {
	TraderID  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientTraderBalanceError) Error() string {
	return fmt.Sprintf("trader %s: requested %s exceeds available balance %s",
		e.TraderID, e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientTraderBalanceError) Unwrap() error { return ErrInsufficientTraderBalance }

type IrreversibleStateError struct {
	LoanID string
	Status string
}

func (e *IrreversibleStateError) Error() string {
	return fmt.Sprintf("loan %s is %s and has financial history; it cannot be deleted", e.LoanID, e.Status)
}

func (e *IrreversibleStateError) Unwrap() error { return ErrIrreversibleState }

type ConcurrentModificationError struct {
	Entity   string
	ID       string
	Attempts int
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently; gave up after %d attempts", e.Entity, e.ID, e.Attempts)
}

func (e *ConcurrentModificationError) Unwrap() error { return ErrConcurrentModification }

// IsBusinessRule reports whether err is a rule violation that must be
// returned to the caller as-is rather than retried.
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInsufficientCredit) ||
		errors.Is(err, ErrInsufficientTraderBalance) ||
		errors.Is(err, ErrVoucherExpired) ||
		errors.Is(err, ErrVoucherNotActive) ||
		errors.Is(err, ErrNoAcceptedDelegation) ||
		errors.Is(err, ErrIrreversibleState) ||
		errors.Is(err, ErrPendingLoanExists) ||
		errors.Is(err, ErrAlreadyApproved)
}
