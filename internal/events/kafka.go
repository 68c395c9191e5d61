package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes events as JSON messages keyed by user, so one user's
// events stay ordered within a partition.
type Kafka struct {
	brokers []string
	topic   string

	mu     sync.Mutex
	writer messageWriter
}

// NewKafka creates a publisher. The writer is created on first publish.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{brokers: brokers, topic: topic}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) PublishSessionSealed(ctx context.Context, e SessionSealed) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.UserID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("session.sealed")},
		},
	}
	if err := k.writerFor().WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing to %s: %w", k.topic, err)
	}
	return nil
}

func (k *Kafka) writerFor() messageWriter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer == nil {
		k.writer = &kafka.Writer{
			Addr:         kafka.TCP(k.brokers...),
			Topic:        k.topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
		}
	}
	return k.writer
}

// Close flushes and releases the writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	var err error
	if k.writer != nil {
		err = multierr.Append(err, k.writer.Close())
		k.writer = nil
	}
	return err
}
