package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/cache"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fake provider ---

type fakeProvider struct {
	name  string
	geo   domain.Geo
	found bool
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Geocode(_ context.Context, _ string) (domain.Geo, bool, error) {
	f.calls++
	return f.geo, f.found, f.err
}

func found(name string, lat, lng float64) *fakeProvider {
	return &fakeProvider{name: name, geo: domain.Geo{Lat: lat, Lng: lng}, found: true}
}

func notFound(name string) *fakeProvider { return &fakeProvider{name: name} }

func unreachable(name string) *fakeProvider {
	return &fakeProvider{name: name, err: fmt.Errorf("%w: dial tcp: connection refused", domain.ErrProviderUnavailable)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newChain(metrics *observability.Metrics, providers ...domain.GeocodeProvider) *Chain {
	return NewChain(discardLogger(), metrics, providers...)
}

// --- tests ---

func TestChain_FirstProviderWins(t *testing.T) {
	p1 := found("google", 42.36, -71.06)
	p2 := found("mapbox", 1, 1)
	p3 := found("nominatim", 2, 2)

	geo, err := newChain(observability.NewMetricsForTesting(), p1, p2, p3).Geocode(context.Background(), "Boston, MA")
	require.NoError(t, err)

	assert.Equal(t, domain.Geo{Lat: 42.36, Lng: -71.06}, geo)
	assert.Equal(t, 1, p1.calls)
	assert.Equal(t, 0, p2.calls, "later providers must not be called")
	assert.Equal(t, 0, p3.calls)
}

func TestChain_FallsThroughOnNotFound(t *testing.T) {
	p1 := notFound("google")
	p2 := found("mapbox", 40.7484, -73.9857)
	p3 := found("nominatim", 2, 2)

	geo, err := newChain(observability.NewMetricsForTesting(), p1, p2, p3).Geocode(context.Background(), "Empire State Building")
	require.NoError(t, err)

	assert.Equal(t, domain.Geo{Lat: 40.7484, Lng: -73.9857}, geo)
	assert.Equal(t, 1, p1.calls)
	assert.Equal(t, 1, p2.calls)
	assert.Equal(t, 0, p3.calls)
}

func TestChain_SkipsUnreachableProvider(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p1 := unreachable("google")
	p2 := found("mapbox", 1.5, 2.5)

	geo, err := newChain(metrics, p1, p2).Geocode(context.Background(), "Somewhere")
	require.NoError(t, err)
	assert.Equal(t, domain.Geo{Lat: 1.5, Lng: 2.5}, geo)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeAttempts.WithLabelValues("google", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeAttempts.WithLabelValues("mapbox", "found")), 0)
}

func TestChain_AllNotFound(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	chain := newChain(metrics, notFound("google"), notFound("mapbox"), notFound("nominatim"))

	_, err := chain.Geocode(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGeocode))
	assert.False(t, errors.Is(err, domain.ErrProviderUnavailable), "plain misses are not outages")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.GeocodeFailures), 0)
}

func TestChain_ExhaustedWithOutageIsDistinguishable(t *testing.T) {
	chain := newChain(observability.NewMetricsForTesting(), notFound("google"), unreachable("mapbox"))

	_, err := chain.Geocode(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGeocode))
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
	assert.Contains(t, err.Error(), "mapbox")
}

func TestChain_NoProviders(t *testing.T) {
	_, err := newChain(observability.NewMetricsForTesting()).Geocode(context.Background(), "Boston")
	assert.ErrorIs(t, err, domain.ErrGeocode)
}

func TestChain_ProvidersKeepOrderAndSkipNil(t *testing.T) {
	chain := newChain(observability.NewMetricsForTesting(), notFound("google"), nil, notFound("nominatim"))
	assert.Equal(t, []string{"google", "nominatim"}, chain.Providers())
}

// --- Cached tests ---

type countingGeocoder struct {
	geo   domain.Geo
	err   error
	calls int
}

func (c *countingGeocoder) Geocode(_ context.Context, _ string) (domain.Geo, error) {
	c.calls++
	return c.geo, c.err
}

func TestCached_Hit(t *testing.T) {
	inner := &countingGeocoder{geo: domain.Geo{Lat: 42.36, Lng: -71.06}}
	cached := NewCached(inner, cache.NewMemory(nil), time.Hour)

	g1, err := cached.Geocode(context.Background(), "Boston, MA")
	require.NoError(t, err)
	g2, err := cached.Geocode(context.Background(), "boston, ma ")
	require.NoError(t, err)

	assert.Equal(t, g1, g2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCached_FailuresAreNotCached(t *testing.T) {
	inner := &countingGeocoder{err: domain.ErrGeocode}
	cached := NewCached(inner, cache.NewMemory(nil), time.Hour)

	_, err := cached.Geocode(context.Background(), "Atlantis")
	require.ErrorIs(t, err, domain.ErrGeocode)
	_, err = cached.Geocode(context.Background(), "Atlantis")
	require.ErrorIs(t, err, domain.ErrGeocode)

	assert.Equal(t, 2, inner.calls)
}
