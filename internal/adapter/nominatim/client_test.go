package nominatim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "Boston, MA", r.URL.Query().Get("q"))
		assert.Equal(t, "disaster-test", r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL+"/", "disaster-test", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Geocode_Found(t *testing.T) {
	srv := testServer(t, http.StatusOK, `[{"lat": "42.3554334", "lon": "-71.060511", "display_name": "Boston"}]`)

	geo, ok, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Geo{Lat: 42.3554334, Lng: -71.060511}, geo)
}

func TestClient_Geocode_Empty(t *testing.T) {
	srv := testServer(t, http.StatusOK, `[]`)

	_, ok, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Geocode_BadCoordinates(t *testing.T) {
	srv := testServer(t, http.StatusOK, `[{"lat": "north", "lon": "-71.06"}]`)

	_, ok, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
}

func TestClient_Geocode_RateLimited(t *testing.T) {
	srv := testServer(t, http.StatusTooManyRequests, `slow down`)

	_, _, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
