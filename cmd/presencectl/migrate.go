package main

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := fromContext(cmd.Context())

		direction := migrate.Up
		if args[0] == "down" {
			direction = migrate.Down
		}

		db, err := database.NewPostgresDB(rt.cfg, rt.logger)
		if err != nil {
			return err
		}
		defer database.CloseDB(db)

		n, err := database.Migrate(db, direction, rt.logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) %s\n", n, args[0])
		return nil
	},
}
