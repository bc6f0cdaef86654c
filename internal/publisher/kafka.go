package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/sheetsync/internal/domain/model"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes order-synced notifications keyed by order id.
type Kafka struct {
	writer messageWriter
	topic  string
}

// NewKafka constructs a publisher writing to topic on brokers.
func NewKafka(brokers []string, topic string) *Kafka {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Kafka{writer: w, topic: topic}
}

func newKafkaWithWriter(w messageWriter, topic string) *Kafka {
	return &Kafka{writer: w, topic: topic}
}

// PublishOrderSynced writes event as JSON. The hash balancer keeps every
// message for one order on the same partition.
func (k *Kafka) PublishOrderSynced(ctx context.Context, event model.OrderSynced) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order synced: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Event)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes pending messages.
func (k *Kafka) Close() error {
	return k.writer.Close()
}

// Nop drops every notification.
type Nop struct{}

// PublishOrderSynced does nothing.
func (Nop) PublishOrderSynced(context.Context, model.OrderSynced) error { return nil }
