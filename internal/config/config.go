// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/evcraddock/fsbo/internal/db"
)

// Auth providers accepted in FSBO_AUTH_PROVIDER.
const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

// Config holds server configuration.
type Config struct {
	DatabaseURL string
	Port        string
	DevMode     bool
	BaseURL     string // e.g. http://localhost:8080
	AdminEmail  string

	AuthProvider            string
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	JWTSecret               string

	StripeSecretKey string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env from the working directory when present, then the process
// environment. Variables already set in the environment win over .env.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:             os.Getenv("FSBO_DATABASE_URL"),
		Port:                    envOrDefault("FSBO_PORT", "8080"),
		DevMode:                 os.Getenv("FSBO_DEV_MODE") == "true",
		BaseURL:                 envOrDefault("FSBO_BASE_URL", "http://localhost:8080"),
		AdminEmail:              os.Getenv("FSBO_ADMIN_EMAIL"),
		AuthProvider:            envOrDefault("FSBO_AUTH_PROVIDER", AuthJWT),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		JWTSecret:               os.Getenv("FSBO_JWT_SECRET"),
		StripeSecretKey:         os.Getenv("STRIPE_SECRET_KEY"),
		SMTPHost:                os.Getenv("FSBO_SMTP_HOST"),
		SMTPPort:                envOrDefault("FSBO_SMTP_PORT", "587"),
		SMTPUser:                os.Getenv("FSBO_SMTP_USER"),
		SMTPPass:                os.Getenv("FSBO_SMTP_PASS"),
		SMTPFrom:                os.Getenv("FSBO_SMTP_FROM"),
	}

	if cfg.DatabaseURL == "" {
		path, err := db.DefaultPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DatabaseURL = path
	}

	rps, err := strconv.ParseFloat(envOrDefault("FSBO_RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return Config{}, fmt.Errorf("invalid FSBO_RATE_LIMIT_RPS %q", os.Getenv("FSBO_RATE_LIMIT_RPS"))
	}
	cfg.RateLimitRPS = rps

	burst, err := strconv.Atoi(envOrDefault("FSBO_RATE_LIMIT_BURST", "20"))
	if err != nil || burst <= 0 {
		return Config{}, fmt.Errorf("invalid FSBO_RATE_LIMIT_BURST %q", os.Getenv("FSBO_RATE_LIMIT_BURST"))
	}
	cfg.RateLimitBurst = burst

	switch cfg.AuthProvider {
	case AuthFirebase:
		if cfg.FirebaseProjectID == "" {
			return Config{}, errors.New("FIREBASE_PROJECT_ID is required when FSBO_AUTH_PROVIDER=firebase")
		}
	case AuthJWT:
	default:
		return Config{}, fmt.Errorf("unknown FSBO_AUTH_PROVIDER %q (want %s or %s)", cfg.AuthProvider, AuthFirebase, AuthJWT)
	}

	return cfg, nil
}

// PaymentsEnabled reports whether a payment processor key is configured.
func (c Config) PaymentsEnabled() bool {
	return c.StripeSecretKey != ""
}

// EmailEnabled reports whether outbound email is configured.
func (c Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
