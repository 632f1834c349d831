package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/fsbo/internal/config"
	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/logging"
	"github.com/evcraddock/fsbo/internal/notify"
	"github.com/evcraddock/fsbo/internal/payment"
	"github.com/evcraddock/fsbo/internal/web"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the marketplace HTTP API. Configuration comes from the environment and an optional .env file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on (default: FSBO_PORT or 8080)")

	return cmd
}

func runServe(ctx context.Context, port string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}
	logging.Setup(cfg.DevMode)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	var payments payment.Provider
	if cfg.PaymentsEnabled() {
		s, err := payment.NewStripe(cfg.StripeSecretKey)
		if err != nil {
			return err
		}
		payments = s
	}

	mailer := notify.NewMailer(notify.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}, cfg.BaseURL, cfg.DevMode)
	if !mailer.Enabled() {
		slog.Warn("email notifications disabled: SMTP not configured")
	}

	database, err := openDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeDB(database)

	srv := web.NewServer(database, web.Options{
		Verifier:       verifier,
		Payments:       payments,
		Notifier:       mailer,
		AdminEmail:     cfg.AdminEmail,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	err = srv.ListenAndServe(ctx, cfg.Port)
	mailer.Wait()
	return err
}

func newVerifier(ctx context.Context, cfg config.Config) (identity.Verifier, error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		return identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	case config.AuthJWT:
		return identity.NewJWTVerifier(cfg.JWTSecret)
	}
	return nil, fmt.Errorf("unknown auth provider %q", cfg.AuthProvider)
}
