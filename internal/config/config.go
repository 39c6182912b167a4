// Package config loads the application configuration from a YAML file with
// sane defaults for everything that is not set.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// DataDir is where the CSV ledger files live.
	DataDir string `yaml:"data_dir"`
	// AutoRegisterOnTrade makes a trade against an unregistered symbol
	// create a summary row instead of logging a warning.
	AutoRegisterOnTrade bool `yaml:"auto_register_on_trade"`

	MarketData struct {
		TimeoutSeconds  int `yaml:"timeout_seconds"`
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"market_data"`

	Database struct {
		// URL enables the PostgreSQL repository when set. The
		// DATABASE_URL environment variable takes precedence.
		URL string `yaml:"url"`
	} `yaml:"database"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func defaults() *Config {
	cfg := &Config{DataDir: "."}
	cfg.MarketData.TimeoutSeconds = 8
	cfg.MarketData.CacheTTLSeconds = 60
	cfg.Log.Level = "info"
	return cfg
}

// Load reads the config file at path. A missing file is not an error: the
// defaults apply. The DATABASE_URL environment variable, when set, overrides
// the configured database URL.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.MarketData.TimeoutSeconds <= 0 {
		cfg.MarketData.TimeoutSeconds = 8
	}
	if cfg.MarketData.CacheTTLSeconds <= 0 {
		cfg.MarketData.CacheTTLSeconds = 60
	}
	return cfg, nil
}
