package loan

import (
	"errors"
	"testing"

	"credit-voucher-engine/internal/domain/errs"
)

func TestGuard_TableDriven(t *testing.T) {
	all := []Status{StatusPending, StatusAccepted, StatusApproved, StatusRejected, StatusDisbursed, StatusSettled}
	legal := map[Operation]map[Status]bool{
		OpAccept:   {StatusPending: true},
		OpApprove:  {StatusPending: true, StatusAccepted: true},
		OpReject:   {StatusPending: true},
		OpDisburse: {StatusApproved: true},
		OpSettle:   {StatusDisbursed: true},
		OpDelete:   {StatusPending: true, StatusAccepted: true, StatusApproved: true, StatusRejected: true},
	}

	for op, ok := range legal {
		for _, s := range all {
			l := &Loan{LoanID: "LN-1", Status: s}
			err := l.Guard(op)
			if ok[s] && err != nil {
				t.Fatalf("%s from %s: unexpected err %v", op, s, err)
			}
			if !ok[s] {
				if !errors.Is(err, errs.ErrInvalidTransition) {
					t.Fatalf("%s from %s: want ErrInvalidTransition, got %v", op, s, err)
				}
				var te *errs.TransitionError
				if !errors.As(err, &te) || len(te.Allowed) == 0 {
					t.Fatalf("%s from %s: error must name allowed states, got %v", op, s, err)
				}
			}
		}
	}
}

func TestPendingCannotReachDisbursedDirectly(t *testing.T) {
	if Can(OpDisburse, StatusPending) {
		t.Fatal("disburse must not be legal from pending")
	}
}

func TestTerminalStatesHaveNoOperatorActions(t *testing.T) {
	if ops := AllowedOperations(StatusSettled); len(ops) != 0 {
		t.Fatalf("settled: want no actions, got %v", ops)
	}
	ops := AllowedOperations(StatusRejected)
	if len(ops) != 1 || ops[0] != OpDelete {
		t.Fatalf("rejected: want only delete, got %v", ops)
	}
}

func TestAllowedOperations_Pending(t *testing.T) {
	got := AllowedOperations(StatusPending)
	want := []Operation{OpAccept, OpApprove, OpReject, OpDelete}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestTarget(t *testing.T) {
	if Target(OpApprove) != StatusApproved || Target(OpDelete) != "" {
		t.Fatalf("unexpected targets: approve=%s delete=%q", Target(OpApprove), Target(OpDelete))
	}
}
