package notify

import (
	"context"
	"time"

	"credit-voucher-engine/internal/domain/event"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	w   messageWriter
	log *zap.Logger
}

func NewKafka(brokers []string, topic string, log *zap.Logger) *Kafka {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Kafka{w: w, log: log}
}

func (n *Kafka) Notify(ctx context.Context, e event.Event) error {
	body, err := encode(e)
	if err != nil {
		return err
	}
	return n.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key(e)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
		},
		Time: e.OccurredAt,
	})
}

func (n *Kafka) Close() error {
	if err := n.w.Close(); err != nil {
		n.log.Warn("kafka notifier: close", zap.Error(err))
		return err
	}
	return nil
}
