package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/noah-isme/toko-storefront/internal/events"
)

// MessageWriter abstracts kafka writer operations for easier testing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher appends events to a Kafka topic keyed by session, so one
// shopper's notifications stay ordered within a partition.
type KafkaPublisher struct {
	Writer MessageWriter
}

// NewKafkaWriter returns an async writer; delivery failures are logged
// instead of blocking the emitting request.
func NewKafkaWriter(brokers, topic string, logger zerolog.Logger) *kafka.Writer {
	addrs := make([]string, 0)
	for _, b := range strings.Split(brokers, ",") {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			addrs = append(addrs, trimmed)
		}
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Warn().Err(err).Int("messages", len(msgs)).Msg("kafka_notify_failed")
			}
		},
	}
}

// Notify implements events.Notifier.
func (p KafkaPublisher) Notify(ctx context.Context, event events.Event) error {
	if p.Writer == nil {
		return errors.New("notify: kafka writer not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}
	key := event.Attributes["session_id"]
	if key == "" {
		key = event.Topic
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "topic", Value: []byte(event.Topic)},
		},
	}
	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("notify: kafka write: %w", err)
	}
	return nil
}
