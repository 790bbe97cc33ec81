package main

import (
	"fmt"
	"strings"

	kafkaadapter "github.com/couchcryptid/disaster-response-service/internal/adapter/kafka"
	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/spf13/cobra"
)

func newPublishReportCommand(ctx *commandContext) *cobra.Command {
	var disasterID, user string
	cmd := &cobra.Command{
		Use:   "publish-report <post>",
		Short: "Produce a social report onto the ingest topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := domain.SocialReport{
				DisasterID: strings.TrimSpace(disasterID),
				Post:       strings.Join(args, " "),
				User:       user,
			}

			w := kafkaadapter.NewReportWriter(cfg)
			defer func() {
				if err := w.Close(); err != nil {
					logger.Warn("close report writer", "error", err)
				}
			}()
			if err := w.Publish(cmd.Context(), report); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %s report for %s to %s\n",
				domain.ClassifyUrgency(report.Post), report.DisasterID, cfg.KafkaSocialTopic)
			return nil
		},
	}
	cmd.Flags().StringVar(&disasterID, "disaster-id", "", "Disaster the report belongs to")
	cmd.Flags().StringVar(&user, "user", "citizen1", "Reporting user")
	_ = cmd.MarkFlagRequired("disaster-id")
	return cmd
}
