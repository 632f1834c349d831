package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Create or upgrade the database schema without starting the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database, err := openDB(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer closeDB(database)
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Database is up to date.")
			return nil
		},
	}
}
