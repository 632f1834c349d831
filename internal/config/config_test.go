package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FSBO_DATABASE_URL", "FSBO_PORT", "FSBO_DEV_MODE", "FSBO_BASE_URL", "FSBO_ADMIN_EMAIL",
		"FSBO_AUTH_PROVIDER", "FIREBASE_PROJECT_ID", "FIREBASE_CREDENTIALS_FILE", "FSBO_JWT_SECRET",
		"STRIPE_SECRET_KEY", "FSBO_SMTP_HOST", "FSBO_SMTP_PORT", "FSBO_SMTP_USER", "FSBO_SMTP_PASS",
		"FSBO_SMTP_FROM", "FSBO_RATE_LIMIT_RPS", "FSBO_RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.AuthProvider != AuthJWT {
		t.Errorf("AuthProvider = %q, want %q", cfg.AuthProvider, AuthJWT)
	}
	if cfg.SMTPPort != "587" {
		t.Errorf("SMTPPort = %q, want 587", cfg.SMTPPort)
	}
	if !strings.HasSuffix(cfg.DatabaseURL, filepath.Join(".fsbo", "fsbo.db")) {
		t.Errorf("DatabaseURL = %q, want default path", cfg.DatabaseURL)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 20 {
		t.Errorf("rate limit = %v/%d, want 5/20", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.PaymentsEnabled() {
		t.Error("PaymentsEnabled() = true without key")
	}
	if cfg.EmailEnabled() {
		t.Error("EmailEnabled() = true without SMTP host")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FSBO_DATABASE_URL", "postgres://localhost/fsbo")
	t.Setenv("FSBO_PORT", "9090")
	t.Setenv("FSBO_DEV_MODE", "true")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("FSBO_SMTP_HOST", "smtp.example.com")
	t.Setenv("FSBO_SMTP_FROM", "noreply@example.com")
	t.Setenv("FSBO_RATE_LIMIT_RPS", "0.5")
	t.Setenv("FSBO_RATE_LIMIT_BURST", "3")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}

	if cfg.DatabaseURL != "postgres://localhost/fsbo" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !cfg.DevMode {
		t.Error("DevMode = false")
	}
	if !cfg.PaymentsEnabled() {
		t.Error("PaymentsEnabled() = false")
	}
	if !cfg.EmailEnabled() {
		t.Error("EmailEnabled() = false")
	}
	if cfg.RateLimitRPS != 0.5 || cfg.RateLimitBurst != 3 {
		t.Errorf("rate limit = %v/%d, want 0.5/3", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad rps", map[string]string{"FSBO_RATE_LIMIT_RPS": "fast"}, "FSBO_RATE_LIMIT_RPS"},
		{"zero burst", map[string]string{"FSBO_RATE_LIMIT_BURST": "0"}, "FSBO_RATE_LIMIT_BURST"},
		{"unknown provider", map[string]string{"FSBO_AUTH_PROVIDER": "okta"}, "unknown FSBO_AUTH_PROVIDER"},
		{"firebase without project", map[string]string{"FSBO_AUTH_PROVIDER": "firebase"}, "FIREBASE_PROJECT_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("FSBO_DATABASE_URL", "test.db")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("FSBO_PORT")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FSBO_PORT=7070\nFSBO_DATABASE_URL=dotenv.db\n"), 0o600); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("Port = %q, want 7070 from .env", cfg.Port)
	}
}
