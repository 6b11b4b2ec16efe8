package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Path    string `mapstructure:"path"`
	Console string `mapstructure:"console"`
}

// JournalConfig configures the run journal.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	ManifestName string        `mapstructure:"manifest_name"`
	ReportName   string        `mapstructure:"report_name"`
	Output       string        `mapstructure:"output"`
	NoColor      bool          `mapstructure:"no_color"`
	NoProgress   bool          `mapstructure:"no_progress"`
	Exclude      []string      `mapstructure:"exclude"`
	Journal      JournalConfig `mapstructure:"journal"`
	Logging      LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/attest/config.yaml
//   - $HOME/.config/attest/config.yaml
//
// Environment variables are prefixed with ATTEST_ (e.g., ATTEST_MANIFEST_NAME).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "attest"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "attest"))

	v.SetEnvPrefix("ATTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (ignore if not found).
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in journal path if present.
	if strings.HasPrefix(cfg.Journal.Path, "~") {
		cfg.Journal.Path = filepath.Join(homeDir, cfg.Journal.Path[1:])
	}

	return &cfg, nil
}

// setDefaults registers every configuration default on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("manifest_name", DefaultManifestName)
	v.SetDefault("report_name", DefaultReportName)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("no_color", false)
	v.SetDefault("no_progress", false)
	v.SetDefault("exclude", []string{})

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", DefaultJournalDir())
	v.SetDefault("journal.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use logging.DefaultLogPath
	v.SetDefault("logging.console", "")
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "attest"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "attest"), nil
}

// DefaultJournalDir returns the default directory for journal entries.
// It uses $XDG_DATA_HOME/attest/journal.
func DefaultJournalDir() string {
	return filepath.Join(xdg.DataHome, "attest", "journal")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	if path == "~" {
		return homeDir, nil
	}
	return filepath.Join(homeDir, path[1:]), nil
}
