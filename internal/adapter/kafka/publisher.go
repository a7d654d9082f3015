package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-adjust-service/internal/config"
	"github.com/couchcryptid/climate-adjust-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// publishTimeout bounds a single audit write so a slow broker cannot hold a response.
const publishTimeout = 5 * time.Second

// Publisher produces adjustment audit events to a Kafka topic.
// It implements adjust.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured audit topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchSize:              1,
		MaxAttempts:            3,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one event keyed by its request ID.
func (p *Publisher) Publish(ctx context.Context, event domain.AdjustmentEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}
	p.logger.Debug("audit event published", "request_id", event.ID, "topic", p.writer.Topic)
	return nil
}

// Close flushes pending audit events and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an AdjustmentEvent into a Kafka message.
func serializeToMessage(event domain.AdjustmentEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize adjustment event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "requested_at", Value: []byte(event.RequestedAt.Format(time.RFC3339))},
		},
	}, nil
}
