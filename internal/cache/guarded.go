package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
)

// Guarded decorates a cache with hit/miss metrics and, when failOpen is set,
// turns backend failures into logged misses and skipped writes.
type Guarded struct {
	inner    domain.Cache
	failOpen bool
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewGuarded wraps inner. With failOpen false, backend errors reach the caller.
func NewGuarded(inner domain.Cache, failOpen bool, logger *slog.Logger, metrics *observability.Metrics) *Guarded {
	return &Guarded{inner: inner, failOpen: failOpen, logger: logger, metrics: metrics}
}

func (g *Guarded) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	value, ok, err := g.inner.Get(ctx, key)
	if err != nil {
		g.metrics.CacheErrors.WithLabelValues("get").Inc()
		if !g.failOpen {
			return nil, false, err
		}
		g.logger.Warn("cache read failed, bypassing cache", "key", key, "error", err)
		ok = false
	}
	result := "miss"
	if ok {
		result = "hit"
	}
	g.metrics.CacheLookups.WithLabelValues(domain.CacheDomain(key), result).Inc()
	g.logger.Debug("cache lookup", "key", key, "result", result)
	return value, ok, nil
}

func (g *Guarded) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := g.inner.Set(ctx, key, value, ttl); err != nil {
		g.metrics.CacheErrors.WithLabelValues("set").Inc()
		if !g.failOpen {
			return err
		}
		g.logger.Warn("cache write failed, continuing without cache", "key", key, "error", err)
	}
	return nil
}
