package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoanTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_loan_transitions_total",
			Help: "Loan application transitions by operation and resulting status",
		},
		[]string{"operation", "status"},
	)

	VoucherTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_voucher_transitions_total",
			Help: "Voucher transitions by operation and resulting status",
		},
		[]string{"operation", "status"},
	)

	CreditConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credit_voucher_consumed_amount_total",
			Help: "Sum of voucher credit consumed at checkout",
		},
	)

	OCCRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_occ_retries_total",
			Help: "Optimistic concurrency retries after a lost version race",
		},
		[]string{"entity"},
	)

	SchedulerSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_scheduler_swept_total",
			Help: "Vouchers transitioned by time-driven sweeps",
		},
		[]string{"task"},
	)

	IdempotentReplays = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credit_idempotent_replays_total",
			Help: "Mutating requests answered from the idempotency store",
		},
	)
)
