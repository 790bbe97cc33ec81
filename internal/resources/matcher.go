// Package resources finds resources near a disaster.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// DefaultRadiusKm is the search radius when the caller gives none.
const DefaultRadiusKm = 10.0

// Matcher normalizes a resource query, resolves its origin, and serves the
// result from the cache or the spatial query. The geometry itself is the
// spatial querier's business.
type Matcher struct {
	store     domain.DisasterStore
	spatial   domain.SpatialQuerier
	cache     domain.Cache
	publisher domain.Publisher
	radiusKm  float64
	ttl       time.Duration
	logger    *slog.Logger
}

// NewMatcher creates a Matcher. defaultRadiusKm applies to queries with no radius.
func NewMatcher(store domain.DisasterStore, spatial domain.SpatialQuerier, cache domain.Cache,
	publisher domain.Publisher, defaultRadiusKm float64, ttl time.Duration, logger *slog.Logger,
) *Matcher {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	return &Matcher{
		store:     store,
		spatial:   spatial,
		cache:     cache,
		publisher: publisher,
		radiusKm:  defaultRadiusKm,
		ttl:       ttl,
		logger:    logger,
	}
}

// FindNear returns the resources around the query origin. Without explicit
// coordinates the origin is the disaster's stored point. The cache key is
// built from the final origin so queries for different disasters never share
// an entry.
func (m *Matcher) FindNear(ctx context.Context, q domain.ResourceQuery) ([]domain.Resource, error) {
	radius := q.RadiusKm
	if radius <= 0 {
		radius = m.radiusKm
	}

	origin, err := m.origin(ctx, q)
	if err != nil {
		return nil, err
	}

	key := q.CacheKey(origin, radius)
	raw, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read resource cache: %w", err)
	}
	if ok {
		var cached []domain.Resource
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		m.logger.Warn("discarding undecodable cache entry", "key", key)
	}

	found, err := m.spatial.FindResourcesNear(ctx, origin, radius)
	if err != nil {
		return nil, fmt.Errorf("%w: spatial query: %w", domain.ErrResourceLookup, err)
	}
	if found == nil {
		found = []domain.Resource{}
	}

	if err := m.cache.Set(ctx, key, found, m.ttl); err != nil {
		return nil, fmt.Errorf("write resource cache: %w", err)
	}
	m.publisher.Publish(domain.Event{
		Topic:    domain.TopicResourcesUpdated,
		EntityID: q.DisasterID,
		Payload:  domain.ResourcesChange{DisasterID: q.DisasterID, Resources: found},
	})
	return found, nil
}

func (m *Matcher) origin(ctx context.Context, q domain.ResourceQuery) (domain.Geo, error) {
	switch {
	case q.Lat != nil && q.Lng != nil:
		return domain.Geo{Lat: *q.Lat, Lng: *q.Lng}, nil
	case q.Lat != nil || q.Lng != nil:
		return domain.Geo{}, fmt.Errorf("%w: lat and lon must be given together", domain.ErrInvalidInput)
	}

	point, err := m.store.Location(ctx, q.DisasterID)
	if err != nil {
		return domain.Geo{}, err
	}
	return domain.ParsePoint(point)
}
