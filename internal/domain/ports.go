package domain

import (
	"context"
	"encoding/json"
	"time"
)

// LocationExtractor pulls a place name out of free text. It returns
// UnknownLocation when the text names no place.
type LocationExtractor interface {
	ExtractLocation(ctx context.Context, text string) (string, error)
}

// GeocodeProvider is one backend in the geocoding chain.
//
// A found result returns (coords, true, nil). A miss returns (Geo{}, false, nil).
// A transport failure returns a non-nil error wrapping ErrProviderUnavailable.
type GeocodeProvider interface {
	Name() string
	Geocode(ctx context.Context, name string) (Geo, bool, error)
}

// Geocoder turns a location name into coordinates or fails with ErrGeocode.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Geo, error)
}

// Cache is a TTL key/value store. Values are stored as JSON. An entry whose
// expiry is at or before the read time is reported as absent.
type Cache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// DisasterStore persists disasters. Location returns the stored point text.
//
// Update applies in and appends its audit entry stamped at in one atomic
// step, so concurrent updates never drop each other's entries.
type DisasterStore interface {
	Create(ctx context.Context, d Disaster) (Disaster, error)
	Get(ctx context.Context, id string) (Disaster, error)
	List(ctx context.Context, tag string) ([]Disaster, error)
	Update(ctx context.Context, id string, in UpdateInput, at time.Time) (Disaster, error)
	Delete(ctx context.Context, id string) error
	Location(ctx context.Context, id string) (string, error)
}

// SpatialQuerier finds resources within radiusKm of origin.
type SpatialQuerier interface {
	FindResourcesNear(ctx context.Context, origin Geo, radiusKm float64) ([]Resource, error)
}

// Publisher delivers events to live subscribers. Delivery is best effort.
type Publisher interface {
	Publish(ev Event)
}

// ImageVerifier checks an image for manipulation.
type ImageVerifier interface {
	VerifyImage(ctx context.Context, imageURL string) (Verification, error)
}

// UpdatesSource gathers official updates for a disaster.
type UpdatesSource interface {
	FetchUpdates(ctx context.Context, disasterID string) ([]OfficialUpdate, error)
}

// SocialSource returns the most recent social reports for a disaster.
type SocialSource interface {
	Recent(ctx context.Context, disasterID string) ([]SocialReport, error)
}
