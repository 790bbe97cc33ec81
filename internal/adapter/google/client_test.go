package google

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

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     "test-key",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Boston, MA", r.URL.Query().Get("address"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Geocode_Found(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"status": "OK",
		"results": [{"formatted_address": "Boston, MA, USA", "geometry": {"location": {"lat": 42.36, "lng": -71.06}}}]
	}`)

	geo, ok, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Geo{Lat: 42.36, Lng: -71.06}, geo)
}

func TestClient_Geocode_ZeroResults(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"status": "ZERO_RESULTS", "results": []}`)

	_, ok, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Geocode_MissingLocationIsNotFound(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"status": "OK", "results": [{"geometry": {}}]}`)

	_, ok, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Geocode_RequestDenied(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`)

	_, ok, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestClient_Geocode_HTTPError(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, `oops`)

	_, _, err := testClient(srv.URL).Geocode(context.Background(), "Boston, MA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
	assert.Contains(t, err.Error(), "500")
}
