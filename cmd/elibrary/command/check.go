package command

import (
	"context"
	"fmt"

	"elibrary/database"
	"elibrary/internal/events"

	"github.com/spf13/cobra"
)

// checkCmd verifies configuration and connectivity without serving traffic.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and reach the database (and Redis when events are enabled)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DBConnectTimeout)
		defer cancel()

		db, err := database.Open(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.EventsEnabled {
			pub, err := events.NewRedisPublisher(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.EventsChannel)
			if err != nil {
				return err
			}
			pub.Close()
		}

		fmt.Fprintln(cmd.OutOrStdout(), "✓ configuration valid, dependencies reachable")
		return nil
	},
}
