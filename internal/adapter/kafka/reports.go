package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/config"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// ReportWriter produces raw social reports onto the ingest topic.
type ReportWriter struct {
	writer messageWriter
}

// NewReportWriter creates a producer for the configured social report topic.
func NewReportWriter(cfg *config.Config) *ReportWriter {
	return &ReportWriter{writer: &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSocialTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

// Publish writes reports keyed by disaster ID. Priority is left to the
// consumer, which classifies every report on ingest.
func (w *ReportWriter) Publish(ctx context.Context, reports ...domain.SocialReport) error {
	msgs := make([]kafkago.Message, 0, len(reports))
	for _, r := range reports {
		msg, err := reportToMessage(r)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish social reports: %w", err)
	}
	return nil
}

func (w *ReportWriter) Close() error {
	return w.writer.Close()
}

func reportToMessage(r domain.SocialReport) (kafkago.Message, error) {
	if r.DisasterID == "" {
		return kafkago.Message{}, fmt.Errorf("%w: report needs a disaster id", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(struct {
		DisasterID string `json:"disaster_id"`
		Post       string `json:"post"`
		User       string `json:"user"`
	}{r.DisasterID, r.Post, r.User})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize social report: %w", err)
	}
	return kafkago.Message{Key: []byte(r.DisasterID), Value: data}, nil
}
