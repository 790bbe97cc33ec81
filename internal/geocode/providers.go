package geocode

import (
	"log/slog"

	"github.com/couchcryptid/disaster-response-service/internal/adapter/google"
	"github.com/couchcryptid/disaster-response-service/internal/adapter/mapbox"
	"github.com/couchcryptid/disaster-response-service/internal/adapter/nominatim"
	"github.com/couchcryptid/disaster-response-service/internal/config"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// ProvidersFromConfig builds providers in GEOCODE_PROVIDERS order. Providers
// without a credential are skipped; Nominatim needs none.
func ProvidersFromConfig(cfg *config.Config, logger *slog.Logger) []domain.GeocodeProvider {
	var out []domain.GeocodeProvider
	for _, name := range cfg.GeocodeProviders {
		switch name {
		case "google":
			if cfg.GoogleMapsAPIKey == "" {
				logger.Info("skipping geocoder without credential", "provider", name, "env", "GOOGLE_MAPS_API_KEY")
				continue
			}
			out = append(out, google.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocodeTimeout, logger))
		case "mapbox":
			if cfg.MapboxToken == "" {
				logger.Info("skipping geocoder without credential", "provider", name, "env", "MAPBOX_TOKEN")
				continue
			}
			out = append(out, mapbox.NewClient(cfg.MapboxToken, cfg.GeocodeTimeout, logger))
		case "nominatim":
			out = append(out, nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.GeocodeTimeout, logger))
		}
	}
	return out
}
