// Package occ retries optimistic-concurrency writes that lost a version race.
package occ

import (
	"context"
	"errors"

	"credit-voucher-engine/internal/domain/errs"
	"credit-voucher-engine/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// DefaultAttempts bounds Retry when the caller passes a non-positive value.
const DefaultAttempts = 3

// Retry runs fn until it returns anything other than errs.ErrVersionConflict.
// fn must re-read and re-validate state on every call. After attempts lost
// races it gives up with a *errs.ConcurrentModificationError.
func Retry(ctx context.Context, log *zap.Logger, attempts int, entity, id string, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	for i := 1; ; i++ {
		err := fn()
		if !errors.Is(err, errs.ErrVersionConflict) {
			return err
		}
		if i >= attempts {
			return &errs.ConcurrentModificationError{Entity: entity, ID: id, Attempts: i}
		}
		metrics.OCCRetries.WithLabelValues(entity).Inc()
		if log != nil {
			log.Warn("occ: version conflict, retrying",
				zap.String("entity", entity), zap.String("id", id), zap.Int("attempt", i))
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
