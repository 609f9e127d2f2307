// Package notify publishes committed lifecycle events to user-facing messaging.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"credit-voucher-engine/internal/config"
	"credit-voucher-engine/internal/domain/event"

	"go.uber.org/zap"
)

// Closer is a notifier holding a connection that must be released on shutdown.
type Closer interface {
	event.Notifier
	Close() error
}

// New picks the notifier named by cfg.Notifier (log, kafka or sns).
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Closer, error) {
	switch cfg.Notifier {
	case "", "log":
		return NewLog(log), nil
	case "kafka":
		return NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log), nil
	case "sns":
		return NewSNS(ctx, cfg.AWSRegion, cfg.SNSTopicARN, log)
	default:
		return nil, fmt.Errorf("unsupported notifier %q", cfg.Notifier)
	}
}

func encode(e event.Event) ([]byte, error) { return json.Marshal(e) }

// key keeps one loan's events in order on partitioned transports.
func key(e event.Event) string {
	if e.LoanID != "" {
		return e.LoanID
	}
	return e.VoucherID
}

type Log struct{ log *zap.Logger }

func NewLog(log *zap.Logger) *Log { return &Log{log: log} }

func (n *Log) Notify(_ context.Context, e event.Event) error {
	fields := []zap.Field{
		zap.String("event_id", e.ID),
		zap.String("type", string(e.Type)),
		zap.Time("occurred_at", e.OccurredAt),
	}
	if e.LoanID != "" {
		fields = append(fields, zap.String("loan_id", e.LoanID))
	}
	if e.VoucherID != "" {
		fields = append(fields, zap.String("voucher_id", e.VoucherID))
	}
	if e.TraderID != "" {
		fields = append(fields, zap.String("trader_id", e.TraderID))
	}
	if e.Amount != nil {
		fields = append(fields, zap.String("amount", e.Amount.StringFixed(2)))
	}
	if e.Reason != "" {
		fields = append(fields, zap.String("reason", e.Reason))
	}
	n.log.Info("event", fields...)
	return nil
}

func (n *Log) Close() error { return nil }
