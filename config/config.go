// Package config loads the crosstab configuration from TOML files and
// environment variables via Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/crosstab/crosstab/errors"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Columns  ColumnsConfig  `mapstructure:"columns"`
}

// DatabaseConfig controls the SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// IngestConfig controls the ingestion run.
type IngestConfig struct {
	// Dir is scanned for workbook files matching the expected filename form.
	Dir string `mapstructure:"dir"`
	// Sheet is the tabulation sheet name inside each workbook.
	Sheet string `mapstructure:"sheet"`
	// Workers bounds how many files are processed concurrently.
	Workers int `mapstructure:"workers"`
}

// ColumnsConfig carries extra header-to-demographic bindings on top of the
// built-in table, e.g. overrides = { "Men 2024" = "gender_male" }.
type ColumnsConfig struct {
	Overrides map[string]string `mapstructure:"overrides"`
}

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the configuration from the usual sources. The result is cached
// for the process lifetime.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path, bypassing the
// cache and environment lookup.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "unmarshal config from %s", configPath)
	}
	return &config, nil
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "crosstab.db")
	v.SetDefault("ingest.dir", ".")
	v.SetDefault("ingest.sheet", "P1")
	v.SetDefault("ingest.workers", 4)
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("CROSSTAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		// Absent or unreadable project config is not fatal; defaults and
		// environment variables still apply.
		_ = v.ReadInConfig()
	}

	viperInstance = v
	return v
}

// findProjectConfig walks up from the working directory looking for
// crosstab.toml, falling back to config.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, "crosstab.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		path = filepath.Join(dir, "config.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
