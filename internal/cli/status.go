package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and auth status",
		Long:  "Shows which server and token the CLI will use, where each came from, and whether the server accepts the token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.OutOrStdout())
		},
	}
}

// runStatus reports problems in its output and only fails on write errors.
func runStatus(w io.Writer) error {
	s, cfgErr := resolveSettings()
	p := &linePrinter{w: w}

	if cfgErr != nil {
		p.printf("Config:  ✗ %v\n", cfgErr)
	}
	p.printf("Server:  %s (%s)\n", s.ServerURL, s.ServerSource)

	if s.Token == "" {
		p.printf("Token:   not configured\n")
		p.printf("\nRun 'fsbo login' to authenticate.\n")
		return p.err
	}
	p.printf("Token:   %s (%s)\n", maskToken(s.Token), s.TokenSource)

	u, err := client.New(s.ServerURL, s.Token, nil).Me()
	var apiErr *client.Error
	switch {
	case err == nil:
		p.printf("Status:  ✓ signed in as %s (%s)\n", u.DisplayName(), u.Role)
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
		p.printf("Status:  ✗ token rejected\n")
		p.printf("\nRun 'fsbo login' to re-authenticate.\n")
	case errors.As(err, &apiErr):
		p.printf("Status:  ✗ unexpected response (%d %s)\n", apiErr.Status, apiErr.Code)
	default:
		p.printf("Status:  ✗ cannot reach server (%v)\n", err)
	}
	return p.err
}

// maskToken keeps only enough of a token to tell two apart.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "…"
	}
	return token[:8] + "…"
}

// linePrinter remembers the first write error so callers check once.
type linePrinter struct {
	w   io.Writer
	err error
}

func (p *linePrinter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
