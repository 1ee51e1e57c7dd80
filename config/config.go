// Package config loads and saves the lista configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lista-app/lista"
)

// Backend names accepted in the configuration.
const (
	// BackendSQL stores the list in a SQLite database.
	BackendSQL = "sql"
	// BackendDoc stores the list in an automerge document.
	BackendDoc = "doc"
)

// Config represents the application configuration
type Config struct {
	// Backend selects the storage implementation: "sql" or "doc".
	Backend string `yaml:"backend"`
	// DataDir is the directory holding the backend's files.
	DataDir string `yaml:"data_dir"`
	// OnCategoryDelete is "cascade" or "orphan".
	OnCategoryDelete string `yaml:"on_category_delete"`
	// LogFile receives structured logs; empty logs to stderr.
	LogFile string `yaml:"log_file"`
}

// Load loads config from the user's config directory
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		cfg := &Config{}
		if err := cfg.applyDefaults(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Fill in any missing values with defaults
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// Validate checks the configuration for values the application cannot use.
func (c *Config) Validate() error {
	if c.Backend != BackendSQL && c.Backend != BackendDoc {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := lista.ParseDeletePolicy(c.OnCategoryDelete); err != nil {
		return err
	}
	if c.DataDir == "" {
		return errors.New("data_dir cannot be empty")
	}
	return nil
}

// DeletePolicy returns the configured category delete policy.
func (c *Config) DeletePolicy() (lista.DeletePolicy, error) {
	return lista.ParseDeletePolicy(c.OnCategoryDelete)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "lista", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "lista", "config.yaml"), nil
}

// defaultDataDir returns the directory backends keep their files in
func defaultDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "lista"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".local", "share", "lista"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() error {
	if c.Backend == "" {
		c.Backend = BackendSQL
	}
	if c.OnCategoryDelete == "" {
		c.OnCategoryDelete = lista.CascadeItems.String()
	}
	if c.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return err
		}
		c.DataDir = dir
	}
	return nil
}
