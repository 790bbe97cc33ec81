package memory

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

const earthRadiusKm = 6371.0

// Resources answers proximity queries over a fixed resource list using the
// haversine distance.
type Resources struct {
	items []domain.Resource
}

// NewResources creates a Resources over items.
func NewResources(items []domain.Resource) *Resources {
	return &Resources{items: slices.Clone(items)}
}

// FindResourcesNear returns every resource within radiusKm of origin, nearest first.
func (r *Resources) FindResourcesNear(_ context.Context, origin domain.Geo, radiusKm float64) ([]domain.Resource, error) {
	out := make([]domain.Resource, 0)
	for _, res := range r.items {
		d := Distance(origin, res.Geo)
		if d > radiusKm {
			continue
		}
		res.DistanceKm = math.Round(d*1000) / 1000
		out = append(out, res)
	}
	slices.SortStableFunc(out, func(a, b domain.Resource) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return out, nil
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b domain.Geo) float64 {
	lat1, lat2 := rad(a.Lat), rad(b.Lat)
	dLat := lat2 - lat1
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// SampleResources is a small New York relief dataset for development runs.
func SampleResources() []domain.Resource {
	return []domain.Resource{
		{ID: "res-1", Name: "Red Cross Shelter", Type: "shelter", Geo: domain.Geo{Lat: 40.7505, Lng: -73.9934}},
		{ID: "res-2", Name: "Bellevue Hospital", Type: "hospital", Geo: domain.Geo{Lat: 40.7392, Lng: -73.9754}},
		{ID: "res-3", Name: "Lower East Side Food Bank", Type: "food", Geo: domain.Geo{Lat: 40.7150, Lng: -73.9843}},
		{ID: "res-4", Name: "Brooklyn Community Shelter", Type: "shelter", Geo: domain.Geo{Lat: 40.6782, Lng: -73.9442}},
		{ID: "res-5", Name: "Boston Medical Center", Type: "hospital", Geo: domain.Geo{Lat: 42.3351, Lng: -71.0723}},
	}
}
