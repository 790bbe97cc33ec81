package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// Client implements domain.GeocodeProvider using an OpenStreetMap Nominatim
// search endpoint. Nominatim needs no key but its usage policy requires an
// identifying User-Agent.
type Client struct {
	userAgent  string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Nominatim client for baseURL (e.g. https://nominatim.openstreetmap.org).
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

func (c *Client) Name() string { return "nominatim" }

// Geocode converts a location name to coordinates.
func (c *Client) Geocode(ctx context.Context, name string) (domain.Geo, bool, error) {
	params := url.Values{
		"format": {"json"},
		"q":      {name},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return domain.Geo{}, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Geo{}, false, fmt.Errorf("%w: nominatim request: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Geo{}, false, fmt.Errorf("%w: nominatim error: status %d: %s", domain.ErrProviderUnavailable, resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Geo{}, false, fmt.Errorf("%w: decode nominatim response: %w", domain.ErrProviderUnavailable, err)
	}
	if len(places) == 0 {
		c.logger.Debug("nominatim found no match", "location", name)
		return domain.Geo{}, false, nil
	}

	// Nominatim encodes coordinates as strings.
	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return domain.Geo{}, false, fmt.Errorf("%w: nominatim returned invalid coordinates %q,%q",
			domain.ErrProviderUnavailable, places[0].Lat, places[0].Lon)
	}
	return domain.Geo{Lat: lat, Lng: lng}, true, nil
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
