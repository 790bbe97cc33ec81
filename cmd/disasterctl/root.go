package main

import (
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/couchcryptid/disaster-response-service/internal/config"
	"github.com/couchcryptid/disaster-response-service/internal/observability"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type commandContext struct {
	envFile *string

	once   sync.Once
	cfg    *config.Config
	logger *slog.Logger
	err    error
}

func (c *commandContext) ensureConfig() (*config.Config, *slog.Logger, error) {
	c.once.Do(func() {
		path := ".env"
		if c.envFile != nil && *c.envFile != "" {
			path = *c.envFile
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.err = err
			return
		}
		c.cfg, c.err = config.Load()
		if c.err == nil {
			c.logger = observability.NewLogger(c.cfg)
		}
	})
	return c.cfg, c.logger, c.err
}

func newRootCommand() *cobra.Command {
	var envFile string
	ctx := &commandContext{envFile: &envFile}

	rootCmd := &cobra.Command{
		Use:           "disasterctl",
		Short:         "Operator tools for the disaster response service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Environment file to load before reading config (default .env)")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newGeocodeCommand(ctx))
	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newResourcesCommand(ctx))
	rootCmd.AddCommand(newSeedResourcesCommand(ctx))
	rootCmd.AddCommand(newPublishReportCommand(ctx))

	return rootCmd
}
