package mapbox

import (
	"context"
	"encoding/json"
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

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Geocode_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Boston, MA.json", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		resp := response{
			Features: []feature{{Center: []float64{-71.06, 42.36}, PlaceName: "Boston, Massachusetts, United States"}},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	geo, ok, err := testClient(srv.URL, 5*time.Second).Geocode(context.Background(), "Boston, MA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Geo{Lat: 42.36, Lng: -71.06}, geo)
}

func TestClient_Geocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	_, ok, err := testClient(srv.URL, 5*time.Second).Geocode(context.Background(), "NONEXISTENT")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Geocode_PartialCenterIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{{Center: []float64{-71.06}}}}))
	}))
	defer srv.Close()

	_, ok, err := testClient(srv.URL, 5*time.Second).Geocode(context.Background(), "Boston")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_Geocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	_, ok, err := testClient(srv.URL, 5*time.Second).Geocode(context.Background(), "Boston")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "401")
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
}

func TestClient_Geocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, _, err := testClient(srv.URL, 50*time.Millisecond).Geocode(context.Background(), "Boston")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
}
