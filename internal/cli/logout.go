package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored token",
		Long:  "Removes the stored sign-in token. With --all the stored server URL is forgotten too.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.OutOrStdout(), all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "also forget the stored server URL")

	return cmd
}

func runLogout(out io.Writer, all bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	next := cfg
	next.Token = ""
	if all {
		next.ServerURL = ""
	}
	if next == cfg {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	if err := saveConfig(next); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if cfg.Token == "" {
		fmt.Fprintln(out, "✓ Stored server forgotten.")
		return nil
	}
	fmt.Fprintln(out, "✓ Logged out. Token removed.")
	return nil
}
