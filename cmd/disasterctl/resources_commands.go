package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/couchcryptid/disaster-response-service/internal/adapter/memory"
	"github.com/couchcryptid/disaster-response-service/internal/adapter/postgres"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/spf13/cobra"
)

func newResourcesCommand(ctx *commandContext) *cobra.Command {
	var (
		lat, lon, distance float64
	)
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List resources near a point",
		Long:  "Query the Postgres resource table when DATABASE_URL is set, otherwise the built-in sample resources.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
				return fmt.Errorf("%w: --lat and --lon are required", domain.ErrInvalidInput)
			}
			if distance <= 0 {
				distance = cfg.ResourceRadiusKm
			}

			var spatial domain.SpatialQuerier
			if cfg.DatabaseURL != "" {
				db, err := postgres.Open(cmd.Context(), postgres.ConfigFrom(cfg))
				if err != nil {
					return err
				}
				defer db.Close()
				spatial = postgres.NewStore(db)
			} else {
				logger.Warn("DATABASE_URL not set, querying sample resources")
				spatial = memory.NewResources(memory.SampleResources())
			}

			found, err := spatial.FindResourcesNear(cmd.Context(), domain.Geo{Lat: lat, Lng: lon}, distance)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(out, "No resources within %s km\n", formatCoord(distance))
				return nil
			}
			rows := make([][]string, 0, len(found))
			for _, r := range found {
				rows = append(rows, []string{r.ID, r.Name, r.Type, strconv.FormatFloat(r.DistanceKm, 'f', 3, 64)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Name", "Type", "Distance (km)"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Origin latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Origin longitude")
	cmd.Flags().Float64Var(&distance, "distance", 0, "Search radius in km (default RESOURCE_RADIUS_KM)")
	return cmd
}

func newSeedResourcesCommand(ctx *commandContext) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-resources",
		Short: "Create the schema and upsert resources into Postgres",
		Long:  "Upsert resources from a JSON array file, or the built-in sample set when --file is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}

			items := memory.SampleResources()
			if file != "" {
				if items, err = readResources(file); err != nil {
					return err
				}
			}

			db, err := postgres.Open(cmd.Context(), postgres.ConfigFrom(cfg))
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}
			if err := postgres.NewStore(db).UpsertResources(cmd.Context(), items); err != nil {
				return err
			}
			logger.Info("resources seeded", "count", len(items))
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d resources\n", len(items))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding an array of resources")
	return cmd
}

func readResources(path string) ([]domain.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resources: %w", err)
	}
	var items []domain.Resource
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode resources %s: %w", path, err)
	}
	for i, r := range items {
		if r.ID == "" || r.Name == "" {
			return nil, fmt.Errorf("%w: resource %d needs id and name", domain.ErrInvalidInput, i)
		}
	}
	return items, nil
}
