package domain

import (
	"strings"
	"time"
)

// Default cache lifetimes. Scraped official updates change faster than the rest.
const (
	DefaultCacheTTL = time.Hour
	UpdatesCacheTTL = 30 * time.Minute
)

// cacheKey joins a prefix, a disaster id, and optional qualifiers with ':'.
func cacheKey(prefix, disasterID string, qualifiers ...string) string {
	parts := append([]string{prefix, disasterID}, qualifiers...)
	return strings.Join(parts, ":")
}

// ResourcesKey is "resources:<id>:<lat>:<lng>:<radius>". It must be computed
// from the final origin, after any fallback to the stored point.
func ResourcesKey(disasterID string, origin Geo, radiusKm float64) string {
	return cacheKey("resources", disasterID, formatCoord(origin.Lat), formatCoord(origin.Lng), formatCoord(radiusKm))
}

// CacheKey is the resources key for q once origin and radius are final.
// Explicit coordinates and radius keep the caller's spelling; values derived
// from the stored point or the default radius are formatted.
func (q ResourceQuery) CacheKey(origin Geo, radiusKm float64) string {
	lat, lng, radius := formatCoord(origin.Lat), formatCoord(origin.Lng), formatCoord(radiusKm)
	if q.Lat != nil && q.Lng != nil && q.LatText != "" && q.LngText != "" {
		lat, lng = q.LatText, q.LngText
	}
	if q.RadiusKm > 0 && q.RadiusText != "" {
		radius = q.RadiusText
	}
	return cacheKey("resources", q.DisasterID, lat, lng, radius)
}

// SocialKey is "social:<id>".
func SocialKey(disasterID string) string { return cacheKey("social", disasterID) }

// VerifyKey is "verify:<id>:<imageUrl>".
func VerifyKey(disasterID, imageURL string) string {
	return cacheKey("verify", disasterID, imageURL)
}

// UpdatesKey is "updates:<id>".
func UpdatesKey(disasterID string) string { return cacheKey("updates", disasterID) }

// GeocodeKey caches a provider chain answer for a location name.
func GeocodeKey(name string) string {
	return "geocode:" + strings.ToLower(strings.TrimSpace(name))
}

// CacheDomain returns the leading domain segment of a key, used as a metric label.
func CacheDomain(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
