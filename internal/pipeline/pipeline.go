package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Transformer decodes and classifies a raw message.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawMessage) (domain.SocialReport, error)
}

// BatchLoader hands classified reports to the social feed.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.SocialReport) error
}

// Exponential backoff: start at 200ms, double each failed cycle, cap at 5s.
const (
	minBackoff = 200 * time.Millisecond
	maxBackoff = 5 * time.Second
)

// Pipeline orchestrates the social report ingest loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("social ingest has not loaded any reports yet")
	}
	return nil
}

// Run consumes batches until the context is cancelled. Extract and load
// failures back off; a batch that decoded nothing is not a failure.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("social ingest started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	delay := minBackoff
	for ctx.Err() == nil {
		if err := p.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("social ingest cycle failed", "error", err, "retry_in", delay)
			if !sleepWithContext(ctx, delay) {
				break
			}
			delay = min(delay*2, maxBackoff)
			continue
		}
		delay = minBackoff
	}

	p.logger.Info("social ingest stopping", "reason", ctx.Err())
	return nil
}

// cycle extracts one batch, classifies it, loads the reports and commits
// their offsets. Undecodable messages are committed straight away so they
// are never redelivered. Offsets of decoded reports are committed only after
// a successful load.
func (p *Pipeline) cycle(ctx context.Context) error {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}
	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	reports, accepted := p.classify(ctx, batch)
	if len(reports) == 0 {
		return nil
	}
	if err := p.loader.LoadBatch(ctx, reports); err != nil {
		return fmt.Errorf("load %d reports: %w", len(reports), err)
	}
	for _, raw := range accepted {
		p.commit(ctx, raw)
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return nil
}

// classify transforms every message, returning the reports alongside the
// messages they came from.
func (p *Pipeline) classify(ctx context.Context, batch []domain.RawMessage) ([]domain.SocialReport, []domain.RawMessage) {
	reports := make([]domain.SocialReport, 0, len(batch))
	accepted := make([]domain.RawMessage, 0, len(batch))
	for _, raw := range batch {
		report, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("skipping undecodable social report",
				"error", err, "topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		p.metrics.ReportsClassified.WithLabelValues(string(report.Priority)).Inc()
		reports = append(reports, report)
		accepted = append(accepted, raw)
	}
	return reports, accepted
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
