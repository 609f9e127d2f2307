// Package publish hands committed lifecycle events to the notifier.
package publish

import (
	"context"

	"credit-voucher-engine/internal/domain/event"
	"credit-voucher-engine/pkg/id"

	"go.uber.org/zap"
)

// Event delivers e and only logs a failure. Call it after the commit.
func Event(ctx context.Context, n event.Notifier, log *zap.Logger, e event.Event) {
	if n == nil {
		return
	}
	if e.ID == "" {
		e.ID = id.NewEventID()
	}
	if err := n.Notify(ctx, e); err != nil && log != nil {
		log.Warn("notify failed",
			zap.String("event_id", e.ID),
			zap.String("type", string(e.Type)),
			zap.Error(err))
	}
}
