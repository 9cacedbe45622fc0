package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Producer publishes JSON messages to a single topic.
type Producer struct {
	writer *kafkago.Writer
}

// ProducerOption configures the producer.
type ProducerOption func(*kafkago.Writer)

// NewProducer creates a Kafka producer.
func NewProducer(cfg Config, opts ...ProducerOption) *Producer {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Async:        false,
	}

	for _, opt := range opts {
		opt(writer)
	}

	return &Producer{writer: writer}
}

// WithBatchSize sets the maximum batch size.
func WithBatchSize(n int) ProducerOption {
	return func(w *kafkago.Writer) {
		w.BatchSize = n
	}
}

// Publish marshals the value as JSON and writes it keyed by key, so
// messages with the same key land on the same partition in order.
func (p *Producer) Publish(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kafka marshal: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
