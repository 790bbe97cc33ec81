// Package geocode resolves location names to coordinates through an ordered
// chain of independent providers.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
)

// Chain tries providers strictly in configured order and returns the first
// found result. A provider that answers "not found" or fails in transport is
// skipped; transport failures are logged and reported in the final error.
type Chain struct {
	providers []domain.GeocodeProvider
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewChain creates a chain over providers in priority order. Nil providers are ignored.
func NewChain(logger *slog.Logger, metrics *observability.Metrics, providers ...domain.GeocodeProvider) *Chain {
	c := &Chain{logger: logger, metrics: metrics}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// Providers returns the provider names in the order they are tried.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Geocode returns the coordinates of name from the first provider that finds
// it. When every provider is exhausted the error wraps domain.ErrGeocode and,
// if any provider was unreachable, domain.ErrProviderUnavailable.
func (c *Chain) Geocode(ctx context.Context, name string) (domain.Geo, error) {
	var failures []error
	for _, p := range c.providers {
		start := time.Now()
		geo, found, err := p.Geocode(ctx, name)
		c.metrics.GeocodeDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

		switch {
		case err != nil:
			c.metrics.GeocodeAttempts.WithLabelValues(p.Name(), "error").Inc()
			c.logger.Warn("geocoding provider failed, trying next",
				"provider", p.Name(),
				"location", name,
				"error", err,
			)
			failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
		case found:
			c.metrics.GeocodeAttempts.WithLabelValues(p.Name(), "found").Inc()
			c.logger.Debug("geocoded location", "provider", p.Name(), "location", name, "lat", geo.Lat, "lng", geo.Lng)
			return geo, nil
		default:
			c.metrics.GeocodeAttempts.WithLabelValues(p.Name(), "not_found").Inc()
		}
	}

	c.metrics.GeocodeFailures.Inc()
	if len(failures) > 0 {
		return domain.Geo{}, fmt.Errorf("%w: %q: %w", domain.ErrGeocode, name, errors.Join(failures...))
	}
	return domain.Geo{}, fmt.Errorf("%w: no provider found %q", domain.ErrGeocode, name)
}
