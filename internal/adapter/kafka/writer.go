package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/config"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Mirror forwards bus events to a Kafka topic so consumers outside the
// process can follow live changes.
type Mirror struct {
	writer messageWriter
	logger *slog.Logger
}

// NewMirror creates a Kafka producer for the configured events topic.
func NewMirror(cfg *config.Config, logger *slog.Logger) *Mirror {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaEventsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Mirror{writer: w, logger: logger}
}

// Run writes every event received on events until ctx is cancelled or the
// channel is closed. Write failures are logged and the event is dropped;
// delivery to the mirror is best effort like any other subscriber.
func (m *Mirror) Run(ctx context.Context, events <-chan domain.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := m.Forward(ctx, ev); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				m.logger.Warn("mirror event failed", "error", err, "topic", ev.Topic, "disaster_id", ev.EntityID)
			}
		}
	}
}

// Forward writes a single event.
func (m *Mirror) Forward(ctx context.Context, ev domain.Event) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	return m.writer.WriteMessages(ctx, msg)
}

func (m *Mirror) Close() error {
	return m.writer.Close()
}

// serializeToMessage marshals an Event into a Kafka message keyed by disaster
// so all changes to one disaster land on one partition in order.
func serializeToMessage(ev domain.Event) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.EntityID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "topic", Value: []byte(ev.Topic)},
			{Key: "published_at", Value: []byte(ev.PublishedAt.Format(time.RFC3339))},
		},
	}, nil
}
