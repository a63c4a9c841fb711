// Package events ships order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go_trial/cravewave/orders"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ orders.Publisher = (*Kafka)(nil)

// Kafka publishes one message per event, keyed by order id so every event of
// an order lands on the same partition in order.
type Kafka struct {
	w MessageWriter
}

func NewKafka(w MessageWriter) *Kafka {
	return &Kafka{w: w}
}

// NewKafkaWriter returns a synchronous writer for topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (k *Kafka) Publish(ctx context.Context, ev orders.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Order.ID),
		Value: value,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event for order %s: %w", ev.Type, ev.Order.ID, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.w.Close()
}
