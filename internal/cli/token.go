package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/config"
	"github.com/evcraddock/fsbo/internal/identity"
)

func newTokenCmd() *cobra.Command {
	var (
		claims identity.Claims
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development sign-in token",
		Long:  "Signs a token with FSBO_JWT_SECRET for a server running with FSBO_AUTH_PROVIDER=jwt. Intended for local development and scripting.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.AuthProvider != config.AuthJWT {
				return errors.New("tokens can only be minted when FSBO_AUTH_PROVIDER=jwt")
			}
			token, err := issueToken(cfg.JWTSecret, claims, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&claims.UserID, "user", "", "user ID (token subject)")
	f.StringVar(&claims.Email, "email", "", "email address")
	f.StringVar(&claims.FirstName, "first-name", "", "first name")
	f.StringVar(&claims.LastName, "last-name", "", "last name")
	f.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func issueToken(secret string, c identity.Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}
	v, err := identity.NewJWTVerifier(secret)
	if err != nil {
		return "", err
	}
	return v.Issue(c, ttl)
}
