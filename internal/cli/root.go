// Package cli defines the cobra command tree for fsbo.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/evcraddock/fsbo/internal/client"
	"github.com/evcraddock/fsbo/internal/db"
)

var (
	flagFormat string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fsbo",
		Short:         "For-sale-by-owner marketplace",
		Long:          "Run the fsbo marketplace API, or browse listings, make offers, and manage the marketplace from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch flagFormat {
			case "text", "json":
				return nil
			}
			return fmt.Errorf("invalid --format %q (must be text or json)", flagFormat)
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "database path or postgres:// URL (default: FSBO_DATABASE_URL or ~/.fsbo/fsbo.db)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSearchCmd(),
		newFeaturedCmd(),
		newShowCmd(),
		newOfferCmd(),
		newMessageCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newAdminCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the store named by dsn, or the --db flag when set.
func openDB(dsn string) (*gorm.DB, error) {
	if flagDB != "" {
		dsn = flagDB
	}
	return db.Open(dsn)
}

// newAPIClient creates an HTTP client for the fsbo API with a short-lived
// response cache. An unreadable config file falls back to env and defaults.
func newAPIClient() *client.Client {
	s, err := resolveSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return client.New(s.ServerURL, s.Token, client.NewCache(128, time.Minute))
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *gorm.DB) {
	if err := db.Close(database); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
