package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a sign-in token",
		Long:  "Stores the ID token issued by the identity provider so later commands can act as you. Use 'fsbo token' to mint one for a development server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(server, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or "+defaultServerURL+")")

	return cmd
}

func runLogin(serverFlag string, in io.Reader, out io.Writer) error {
	fmt.Fprint(out, "Paste your ID token: ")
	token, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading input: %w", err)
	}

	token = strings.TrimSpace(token)
	if err := validateToken(token); err != nil {
		return err
	}

	// An unreadable config is replaced rather than blocking sign-in.
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "\nwarning: %v; starting a fresh config\n", err)
		cfg = CLIConfig{}
	}

	cfg.Token = token
	if serverFlag != "" {
		cfg.ServerURL = serverFlag
	}

	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "✓ Token saved. Run 'fsbo status' to check it.")
	return nil
}

// validateToken checks that token looks like a compact JWT.
func validateToken(token string) error {
	if token == "" {
		return fmt.Errorf("no token provided")
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("invalid token format (expected header.payload.signature)")
	}
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("invalid token format (empty segment)")
		}
	}
	return nil
}
