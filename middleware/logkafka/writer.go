// Package logkafka ships structured logs through Kafka: a zerolog sink that
// produces every line to a topic, the request logging middleware, and an
// indexer draining the topic into Elasticsearch.
package logkafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the sink needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Writer is an io.Writer for zerolog. It never blocks the caller on the
// broker when built with NewKafkaWriter, which is asynchronous.
type Writer struct {
	w MessageWriter
}

func NewWriter(w MessageWriter) *Writer {
	return &Writer{w: w}
}

// NewKafkaWriter returns an async writer for the log topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		BatchTimeout:           time.Second,
		AllowAutoTopicCreation: true,
	}
}

func (w *Writer) Write(p []byte) (int, error) {
	// zerolog reuses p after Write returns
	msg := make([]byte, len(p))
	copy(msg, p)
	if err := w.w.WriteMessages(context.Background(), kafka.Message{Value: msg, Time: time.Now()}); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *Writer) Close() error {
	return w.w.Close()
}
