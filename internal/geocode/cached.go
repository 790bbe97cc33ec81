package geocode

import (
	"context"
	"encoding/json"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// Cached wraps a Geocoder with the TTL cache. Only found coordinates are
// cached so misses and outages can be retried on the next request.
type Cached struct {
	inner domain.Geocoder
	cache domain.Cache
	ttl   time.Duration
}

// NewCached creates a cache decorator around a geocoder.
func NewCached(inner domain.Geocoder, cache domain.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: cache, ttl: ttl}
}

func (c *Cached) Geocode(ctx context.Context, name string) (domain.Geo, error) {
	key := domain.GeocodeKey(name)
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		return domain.Geo{}, err
	}
	if ok {
		var geo domain.Geo
		if json.Unmarshal(raw, &geo) == nil {
			return geo, nil
		}
	}

	geo, err := c.inner.Geocode(ctx, name)
	if err != nil {
		return geo, err
	}
	if err := c.cache.Set(ctx, key, geo, c.ttl); err != nil {
		return domain.Geo{}, err
	}
	return geo, nil
}
