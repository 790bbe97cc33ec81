package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/couchcryptid/disaster-response-service/internal/adapter/gemini"
	"github.com/couchcryptid/disaster-response-service/internal/config"
	"github.com/couchcryptid/disaster-response-service/internal/disaster"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/couchcryptid/disaster-response-service/internal/geocode"
	"github.com/couchcryptid/disaster-response-service/internal/location"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
	"github.com/spf13/cobra"
)

func newChain(cfg *config.Config, logger *slog.Logger) *geocode.Chain {
	return geocode.NewChain(logger, observability.NewMetricsForTesting(), geocode.ProvidersFromConfig(cfg, logger)...)
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <description>",
		Short: "Extract a location from free text and geocode it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var extractor domain.LocationExtractor
			if cfg.GeminiAPIKey != "" {
				extractor = gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiVisionModel, cfg.GeminiTimeout, logger)
			}
			// GeocodeText touches neither storage nor the bus.
			svc := disaster.NewService(disaster.Deps{
				Resolver: location.NewResolver(extractor, cfg.LocationPlaceholder, logger),
				Geocoder: newChain(cfg, logger),
				Logger:   logger,
			})

			name, geo, err := svc.GeocodeText(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Location", "Latitude", "Longitude", "Point"},
				[][]string{{name, formatCoord(geo.Lat), formatCoord(geo.Lng), domain.FormatPoint(geo)}},
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newGeocodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <location name>",
		Short: "Geocode a location name through the configured provider chain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			chain := newChain(cfg, logger)
			name := strings.Join(args, " ")

			geo, err := chain.Geocode(cmd.Context(), name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Providers: %s\n", strings.Join(chain.Providers(), " -> "))
			fmt.Fprintln(out, renderTable(
				[]string{"Location", "Latitude", "Longitude"},
				[][]string{{name, formatCoord(geo.Lat), formatCoord(geo.Lng)}},
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
