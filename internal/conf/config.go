// Package conf handles the configuration of the primer scheme repository
// tooling, including reading the config file and providing defaults.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig defines the file logging settings
type LogConfig struct {
	Enabled bool   `yaml:"enabled"` // true to enable file logging
	Path    string `yaml:"path"`    // path to log file
}

// RepositoryConfig locates the scheme repository on disk and on GitHub
type RepositoryConfig struct {
	ParentDir  string `yaml:"parentdir"`  // directory containing the primer class trees and index.json
	GithubRepo string `yaml:"githubrepo"` // owner/name slug used to build raw download URLs
	ServerURL  string `yaml:"serverurl"`  // base URL of the hosting server
}

// AuditConfig defines the index build audit log settings
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"` // true to record index builds in the audit database
	Path    string `yaml:"path"`    // path to the sqlite audit database
}

// Settings contains all runtime configuration
type Settings struct {
	Debug      bool             `yaml:"debug"`
	Repository RepositoryConfig `yaml:"repository"`
	Log        LogConfig        `yaml:"log"`
	Audit      AuditConfig      `yaml:"audit"`
}

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	if configDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(configDir, "primal-page"))
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file anywhere, write the defaults to the user config
			// directory so the next run has one to edit.
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the default config file to the user config
// directory and re-reads it.
func createDefaultConfig() error {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("error finding user config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "primal-page", "config.yaml")

	if err := WriteDefaultConfig(configPath); err != nil {
		return err
	}
	return viper.ReadInConfig()
}

// WriteDefaultConfig writes a commented default config file to configPath.
func WriteDefaultConfig(configPath string) error {
	settings := &Settings{}
	setDefaultConfig()
	if err := viper.Unmarshal(settings); err != nil {
		return fmt.Errorf("error building default settings: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return nil
}
