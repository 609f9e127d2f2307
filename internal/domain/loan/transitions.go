package loan

import "credit-voucher-engine/internal/domain/errs"

type Operation string

const (
	OpAccept   Operation = "accept"
	OpApprove  Operation = "approve"
	OpReject   Operation = "reject"
	OpDisburse Operation = "disburse"
	OpSettle   Operation = "settle"
	OpDelete   Operation = "delete"
	// OpIssueVoucher mints an additional voucher against an approved loan.
	OpIssueVoucher Operation = "issue_voucher"
)

// Transition table. Delete keeps the status (soft delete) and so has no target.
var transitions = []struct {
	op   Operation
	from []Status
	to   Status
}{
	{OpAccept, []Status{StatusPending}, StatusAccepted},
	{OpApprove, []Status{StatusPending, StatusAccepted}, StatusApproved},
	{OpReject, []Status{StatusPending}, StatusRejected},
	{OpDisburse, []Status{StatusApproved}, StatusDisbursed},
	{OpSettle, []Status{StatusDisbursed}, StatusSettled},
	{OpDelete, []Status{StatusPending, StatusAccepted, StatusApproved, StatusRejected}, ""},
	{OpIssueVoucher, []Status{StatusApproved, StatusDisbursed}, ""},
}

// AllowedFrom lists the statuses op may be applied from.
func AllowedFrom(op Operation) []Status {
	for _, t := range transitions {
		if t.op == op {
			return t.from
		}
	}
	return nil
}

// Target returns the status op moves a loan into ("" for non-moving ops).
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

// AllowedOperations is the status -> [operations] view of the table for frontends.
func AllowedOperations(s Status) []Operation {
	ops := make([]Operation, 0, 3)
	for _, t := range transitions {
		if t.op == OpSettle || t.op == OpIssueVoucher {
			continue // driven by voucher settlement / approval, not an operator button
		}
		if Can(t.op, s) {
			ops = append(ops, t.op)
		}
	}
	return ops
}

// Guard returns a TransitionError when op is not legal from the loan's status.
func (l *Loan) Guard(op Operation) error {
	if Can(op, l.Status) {
		return nil
	}
	from := AllowedFrom(op)
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	return &errs.TransitionError{
		Entity:    "loan",
		ID:        l.LoanID,
		Operation: string(op),
		Current:   string(l.Status),
		Allowed:   allowed,
	}
}
