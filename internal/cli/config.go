package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerURL = "http://localhost:8080"

	envServerURL = "FSBO_SERVER_URL"
	envToken     = "FSBO_TOKEN"
)

// CLIConfig is the sign-in state persisted between invocations.
type CLIConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Token     string `yaml:"token,omitempty"`
}

// configFile is the YAML file CLIConfig lives in.
type configFile string

func userConfigFile() (configFile, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return configFile(filepath.Join(home, ".config", "fsbo", "config.yaml")), nil
}

// read returns the stored config, or the zero value when nothing is stored yet.
func (f configFile) read() (CLIConfig, error) {
	var cfg CLIConfig
	data, err := os.ReadFile(string(f))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("reading %s: %w", f, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing %s: %w", f, err)
	}
	return cfg, nil
}

// write replaces the file through a rename so a crash never leaves it half written.
func (f configFile) write(cfg CLIConfig) error {
	dir := filepath.Dir(string(f))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("securing temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp config: %w", err)
	}
	if err := os.Rename(tmp.Name(), string(f)); err != nil {
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

func loadConfig() (CLIConfig, error) {
	f, err := userConfigFile()
	if err != nil {
		return CLIConfig{}, err
	}
	return f.read()
}

func saveConfig(cfg CLIConfig) error {
	f, err := userConfigFile()
	if err != nil {
		return err
	}
	return f.write(cfg)
}

// settings is where the client connects and with what token, and where each
// value came from: "env", "config", or "default".
type settings struct {
	ServerURL    string
	ServerSource string
	Token        string
	TokenSource  string
}

// resolveSettings layers the environment over the stored config over the
// defaults. A broken config file is reported but does not hide env values.
func resolveSettings() (settings, error) {
	s := settings{ServerURL: defaultServerURL, ServerSource: "default"}
	cfg, err := loadConfig()
	if cfg.ServerURL != "" {
		s.ServerURL, s.ServerSource = cfg.ServerURL, "config"
	}
	if cfg.Token != "" {
		s.Token, s.TokenSource = cfg.Token, "config"
	}
	if v := os.Getenv(envServerURL); v != "" {
		s.ServerURL, s.ServerSource = v, "env"
	}
	if v := os.Getenv(envToken); v != "" {
		s.Token, s.TokenSource = v, "env"
	}
	return s, err
}
