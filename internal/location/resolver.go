// Package location extracts a place name from free-text disaster descriptions.
package location

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// Resolver delegates a single extraction call to a text-understanding
// capability. With no capability configured it answers a fixed placeholder
// so the rest of the pipeline still runs in development environments.
type Resolver struct {
	extractor   domain.LocationExtractor
	placeholder string
	logger      *slog.Logger
}

// NewResolver creates a Resolver. Pass a nil extractor to enable the placeholder mode.
func NewResolver(extractor domain.LocationExtractor, placeholder string, logger *slog.Logger) *Resolver {
	return &Resolver{extractor: extractor, placeholder: placeholder, logger: logger}
}

// Resolve returns the place named in text, or domain.UnknownLocation when the
// capability finds none. A failed call is wrapped in domain.ErrResolution and
// is never retried.
func (r *Resolver) Resolve(ctx context.Context, text string) (string, error) {
	if r.extractor == nil {
		r.logger.Warn("no text-understanding capability configured, returning placeholder location",
			"location", r.placeholder)
		return r.placeholder, nil
	}
	name, err := r.extractor.ExtractLocation(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolution, err)
	}
	return name, nil
}

// IsUnknown reports whether a resolved name is the terminal "cannot resolve"
// answer. An empty answer is treated the same way.
func IsUnknown(name string) bool {
	return name == domain.UnknownLocation || name == ""
}
