// Package scheduler runs the time-driven voucher transitions as periodic asynq tasks.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TaskExpireVouchers = "voucher:expire"
	TaskMarkOverdue    = "voucher:mark_overdue"

	Queue = "scheduler"
)

// Sweeper is the voucher lifecycle side the scheduler drives.
type Sweeper interface {
	Expire(ctx context.Context) (int, error)
	MarkOverdue(ctx context.Context) (int, error)
}

func NewMux(s Sweeper, log *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskExpireVouchers, sweepHandler(TaskExpireVouchers, s.Expire, log))
	mux.HandleFunc(TaskMarkOverdue, sweepHandler(TaskMarkOverdue, s.MarkOverdue, log))
	return mux
}

func sweepHandler(task string, run func(context.Context) (int, error), log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		start := time.Now()
		n, err := run(ctx)
		if err != nil {
			log.Error("sweep failed", zap.String("task", task), zap.Int("moved", n), zap.Error(err))
			return fmt.Errorf("%s: %w", task, err)
		}
		log.Debug("sweep ok", zap.String("task", task), zap.Int("moved", n), zap.Duration("took", time.Since(start)))
		return nil
	}
}

// Register adds both sweeps to s. A tick that fires while the previous run
// is still going is dropped by Unique. Sweeps are idempotent, so a failed run
// is not retried; the next tick redoes it.
func Register(s *asynq.Scheduler, expireSpec, overdueSpec string, timeout time.Duration) error {
	opts := []asynq.Option{
		asynq.Queue(Queue),
		asynq.MaxRetry(0),
		asynq.Timeout(timeout),
		asynq.Unique(timeout),
	}
	if _, err := s.Register(expireSpec, asynq.NewTask(TaskExpireVouchers, nil), opts...); err != nil {
		return fmt.Errorf("register %s: %w", TaskExpireVouchers, err)
	}
	if _, err := s.Register(overdueSpec, asynq.NewTask(TaskMarkOverdue, nil), opts...); err != nil {
		return fmt.Errorf("register %s: %w", TaskMarkOverdue, err)
	}
	return nil
}
