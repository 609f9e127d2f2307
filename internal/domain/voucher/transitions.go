package voucher

import "credit-voucher-engine/internal/domain/errs"

type Operation string

const (
	OpConsume Operation = "consume"
	OpSettle  Operation = "settle"
	OpSuspend Operation = "suspend"
	OpExpire  Operation = "expire"
	OpMature  Operation = "mature"
)

// Time-driven ops (expire, mature) are in the table so the scheduler uses the
// same legality check, but they are not exposed as user actions.
var transitions = []struct {
	op   Operation
	from []Status
	to   Status
}{
	{OpConsume, []Status{StatusActive, StatusUsed}, StatusUsed},
	{OpSettle, []Status{StatusUsed, StatusMatured}, StatusSettled},
	{OpSuspend, []Status{StatusActive, StatusUsed}, StatusSuspended},
	{OpExpire, []Status{StatusActive}, StatusExpired},
	{OpMature, []Status{StatusUsed}, StatusMatured},
}

func AllowedFrom(op Operation) []Status {
	for _, t := range transitions {
		if t.op == op {
			return t.from
		}
	}
	return nil
}

func Target(op Operation) Status {
	for _, t := range transitions {
		if t.op == op {
			return t.to
		}
	}
	return ""
}

func Can(op Operation, s Status) bool {
	for _, from := range AllowedFrom(op) {
		if from == s {
			return true
		}
	}
	return false
}

// AllowedOperations lists user-facing actions legal from s.
func AllowedOperations(s Status) []Operation {
	var ops []Operation
	for _, t := range transitions {
		if t.op == OpExpire || t.op == OpMature {
			continue
		}
		if Can(t.op, s) {
			ops = append(ops, t.op)
		}
	}
	return ops
}

// Guard checks op against the given (normally effective) status.
func (v *Voucher) Guard(op Operation, current Status) error {
	if Can(op, current) {
		return nil
	}
	from := AllowedFrom(op)
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	return &errs.TransitionError{
		Entity:    "voucher",
		ID:        v.VoucherID,
		Operation: string(op),
		Current:   string(current),
		Allowed:   allowed,
	}
}
