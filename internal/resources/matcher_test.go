package resources

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/cache"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type pointStore struct {
	domain.DisasterStore // only Location is exercised
	points map[string]string
	calls  int
}

func (s *pointStore) Location(_ context.Context, id string) (string, error) {
	s.calls++
	p, ok := s.points[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

type spatialCall struct {
	origin   domain.Geo
	radiusKm float64
}

type fakeSpatial struct {
	result []domain.Resource
	err    error
	calls  []spatialCall
}

func (f *fakeSpatial) FindResourcesNear(_ context.Context, origin domain.Geo, radiusKm float64) ([]domain.Resource, error) {
	f.calls = append(f.calls, spatialCall{origin: origin, radiusKm: radiusKm})
	return f.result, f.err
}

type recordingPublisher struct {
	events []domain.Event
}

func (p *recordingPublisher) Publish(ev domain.Event) { p.events = append(p.events, ev) }

type fixture struct {
	store   *pointStore
	spatial *fakeSpatial
	cache   *cache.Memory
	pub     *recordingPublisher
	matcher *Matcher
}

func newFixture() *fixture {
	f := &fixture{
		store: &pointStore{points: map[string]string{
			"d-1": "POINT(-73.9857 40.7484)",
			"d-2": "POINT(-71.06 42.36)",
			"bad": "40.7484,-73.9857",
		}},
		spatial: &fakeSpatial{result: []domain.Resource{
			{ID: "r-1", Name: "Red Cross Shelter", Type: "shelter", Geo: domain.Geo{Lat: 40.75, Lng: -73.99}, DistanceKm: 0.4},
		}},
		cache: cache.NewMemory(nil),
		pub:   &recordingPublisher{},
	}
	f.matcher = NewMatcher(f.store, f.spatial, f.cache, f.pub, 0, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func ptr(v float64) *float64 { return &v }

// --- tests ---

func TestFindNear_StoredPointDefaultRadius(t *testing.T) {
	f := newFixture()

	got, err := f.matcher.FindNear(context.Background(), domain.ResourceQuery{DisasterID: "d-1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.Len(t, f.spatial.calls, 1)
	assert.Equal(t, spatialCall{origin: domain.Geo{Lat: 40.7484, Lng: -73.9857}, radiusKm: 10}, f.spatial.calls[0])

	raw, ok, err := f.cache.Get(context.Background(), "resources:d-1:40.7484:-73.9857:10")
	require.NoError(t, err)
	require.True(t, ok, "result cached under the resolved key")
	var cached []domain.Resource
	require.NoError(t, json.Unmarshal(raw, &cached))
	assert.Equal(t, got, cached)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, domain.TopicResourcesUpdated, f.pub.events[0].Topic)
	assert.Equal(t, "d-1", f.pub.events[0].EntityID)
	assert.Equal(t, domain.ResourcesChange{DisasterID: "d-1", Resources: got}, f.pub.events[0].Payload)
}

func TestFindNear_ExplicitCoordinatesSkipStore(t *testing.T) {
	f := newFixture()

	_, err := f.matcher.FindNear(context.Background(), domain.ResourceQuery{
		DisasterID: "d-1", Lat: ptr(40.0), Lng: ptr(-74.5), RadiusKm: 2.5,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, f.store.calls)
	require.Len(t, f.spatial.calls, 1)
	assert.Equal(t, spatialCall{origin: domain.Geo{Lat: 40, Lng: -74.5}, radiusKm: 2.5}, f.spatial.calls[0])
	_, ok, _ := f.cache.Get(context.Background(), "resources:d-1:40:-74.5:2.5")
	assert.True(t, ok)
}

func TestFindNear_ExplicitValuesKeepQuerySpelling(t *testing.T) {
	f := newFixture()

	q := domain.ResourceQuery{
		DisasterID: "d-1", Lat: ptr(40.7484), Lng: ptr(-73.9857), RadiusKm: 10,
		LatText: "40.74840", LngText: "-73.9857", RadiusText: "10.0",
	}
	_, err := f.matcher.FindNear(context.Background(), q)
	require.NoError(t, err)

	_, ok, _ := f.cache.Get(context.Background(), "resources:d-1:40.74840:-73.9857:10.0")
	assert.True(t, ok, "explicit values are keyed as the caller wrote them")
	_, ok, _ = f.cache.Get(context.Background(), "resources:d-1:40.7484:-73.9857:10")
	assert.False(t, ok)

	_, err = f.matcher.FindNear(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, f.spatial.calls, 1)
}

func TestFindNear_CacheHitSkipsQueryAndPublish(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.matcher.FindNear(ctx, domain.ResourceQuery{DisasterID: "d-1"})
	require.NoError(t, err)
	second, err := f.matcher.FindNear(ctx, domain.ResourceQuery{DisasterID: "d-1"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.spatial.calls, 1)
	assert.Len(t, f.pub.events, 1)
}

func TestFindNear_DisastersWithoutCoordinatesDoNotCollide(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.matcher.FindNear(ctx, domain.ResourceQuery{DisasterID: "d-1"})
	require.NoError(t, err)
	_, err = f.matcher.FindNear(ctx, domain.ResourceQuery{DisasterID: "d-2"})
	require.NoError(t, err)

	require.Len(t, f.spatial.calls, 2)
	assert.Equal(t, domain.Geo{Lat: 42.36, Lng: -71.06}, f.spatial.calls[1].origin)
	assert.Equal(t, 2, f.cache.Len())
}

func TestFindNear_MalformedStoredPoint(t *testing.T) {
	f := newFixture()

	_, err := f.matcher.FindNear(context.Background(), domain.ResourceQuery{DisasterID: "bad"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrResourceLookup))
	assert.Empty(t, f.spatial.calls, "never query with a defaulted origin")
	assert.Empty(t, f.pub.events)
}

func TestFindNear_UnknownDisaster(t *testing.T) {
	f := newFixture()

	_, err := f.matcher.FindNear(context.Background(), domain.ResourceQuery{DisasterID: "missing"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindNear_HalfCoordinatePair(t *testing.T) {
	f := newFixture()

	_, err := f.matcher.FindNear(context.Background(), domain.ResourceQuery{DisasterID: "d-1", Lat: ptr(1)})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.spatial.calls)
}

func TestFindNear_SpatialFailureNotCached(t *testing.T) {
	f := newFixture()
	f.spatial.err = errors.New("rpc find_resources_near failed")

	_, err := f.matcher.FindNear(context.Background(), domain.ResourceQuery{DisasterID: "d-1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrResourceLookup))
	assert.Equal(t, 0, f.cache.Len())
	assert.Empty(t, f.pub.events)
}

func TestFindNear_EmptyResultIsCached(t *testing.T) {
	f := newFixture()
	f.spatial.result = nil

	got, err := f.matcher.FindNear(context.Background(), domain.ResourceQuery{DisasterID: "d-1"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 1, f.cache.Len())
}
