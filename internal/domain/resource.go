package domain

// Resource is a facility or supply point near a disaster.
type Resource struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Geo        Geo     `json:"geo"`
	DistanceKm float64 `json:"distance_km"`
}

// ResourceQuery asks for resources around a disaster. When Lat and Lng are
// both nil the origin is the disaster's stored point.
//
// The *Text fields hold the caller's spelling of explicit values. When set,
// they are used verbatim in the cache key so entries written by earlier
// deployments keyed on the raw query string stay readable.
type ResourceQuery struct {
	DisasterID string
	Lat        *float64
	Lng        *float64
	RadiusKm   float64

	LatText    string
	LngText    string
	RadiusText string
}

// Verification is the outcome of an image authenticity check.
type Verification struct {
	Verified bool   `json:"verified"`
	Reason   string `json:"reason"`
}

// OfficialUpdate is one headline gathered from an official source.
type OfficialUpdate struct {
	Source string `json:"source"`
	Update string `json:"update"`
	Link   string `json:"link"`
}
