package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// Geocoding API status values. Everything other than OK and ZERO_RESULTS is
// an account or quota problem and counts as the provider being unavailable.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// Client implements domain.GeocodeProvider using the Google Maps Geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Google Maps geocoding client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://maps.googleapis.com/maps/api/geocode/json",
		logger:     logger,
	}
}

func (c *Client) Name() string { return "google" }

// Geocode converts a location name to coordinates.
func (c *Client) Geocode(ctx context.Context, name string) (domain.Geo, bool, error) {
	params := url.Values{
		"address": {name},
		"key":     {c.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Geo{}, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Geo{}, false, fmt.Errorf("%w: google request: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Geo{}, false, fmt.Errorf("%w: google API error: status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, body)
	}

	var gr response
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return domain.Geo{}, false, fmt.Errorf("%w: decode google response: %w", domain.ErrProviderUnavailable, err)
	}

	switch gr.Status {
	case statusOK:
	case statusZeroResults:
		c.logger.Debug("google found no match", "location", name)
		return domain.Geo{}, false, nil
	default:
		return domain.Geo{}, false, fmt.Errorf("%w: google status %s: %s", domain.ErrProviderUnavailable, gr.Status, gr.ErrorMessage)
	}

	if len(gr.Results) == 0 || gr.Results[0].Geometry.Location == nil {
		return domain.Geo{}, false, nil
	}
	loc := gr.Results[0].Geometry.Location
	return domain.Geo{Lat: loc.Lat, Lng: loc.Lng}, true, nil
}

// Google API response types.

type response struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []result `json:"results"`
}

type result struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
}

type geometry struct {
	Location *location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
