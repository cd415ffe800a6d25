package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// defaultServerURL is used when neither the environment nor the config
// file names a server.
const defaultServerURL = "http://localhost:8080"

// CLIConfig holds CLI configuration persisted to disk. Format and
// AssumeYes are defaults for --format and --yes.
type CLIConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Format    string `yaml:"format,omitempty"`
	AssumeYes bool   `yaml:"assume_yes,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vp", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// getServerURL returns the server URL from env var, config, or default.
func getServerURL() string {
	if v := os.Getenv("VP_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// validFormat reports whether f is a known output format.
func validFormat(f string) bool {
	return f == "text" || f == "json"
}

// applyCLIDefaults fills --format and --yes from the config file when they
// were not given on the command line. An unreadable config file is
// ignored so that 'vp config' can still repair it.
func applyCLIDefaults(cmd *cobra.Command) error {
	if cfg, err := loadConfig(); err == nil {
		flags := cmd.Flags()
		if !flags.Changed("format") && cfg.Format != "" {
			flagFormat = cfg.Format
		}
		if !flags.Changed("yes") && cfg.AssumeYes {
			flagYes = true
		}
	}
	if !validFormat(flagFormat) {
		return fmt.Errorf("unknown output format %q (use text or json)", flagFormat)
	}
	return nil
}
