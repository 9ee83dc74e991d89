// Package config loads agentboard settings.
//
// Settings come from three layers, later layers winning: built-in defaults,
// an optional YAML file, and AGENTBOARD_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/roach88/agentboard/internal/stall"
)

// EnvPrefix prefixes every environment override, e.g. AGENTBOARD_DB.
const EnvPrefix = "AGENTBOARD"

// Defaults.
const (
	DefaultDatabase       = "./agentboard.db"
	DefaultLeaderboardTop = 10
)

// Config holds runtime settings.
type Config struct {
	// Database is the SQLite database path.
	Database string `yaml:"database" envconfig:"DB"`

	// Template is an optional checklist template file (.yaml, .yml or .cue).
	// Empty uses the built-in template.
	Template string `yaml:"template" envconfig:"TEMPLATE"`

	// StallThresholdDays is the idle period after which an agent is stalled.
	StallThresholdDays int `yaml:"stall_threshold_days" envconfig:"STALL_THRESHOLD_DAYS"`

	// LeaderboardTop caps leaderboard output when no --top flag is given.
	LeaderboardTop int `yaml:"leaderboard_top" envconfig:"LEADERBOARD_TOP"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database:           DefaultDatabase,
		StallThresholdDays: stall.DefaultThresholdDays,
		LeaderboardTop:     DefaultLeaderboardTop,
	}
}

// Load builds the configuration. path names a YAML file; an empty path skips
// the file layer. A named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		// An empty file leaves the defaults in place.
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("config: database path is required")
	}
	if c.StallThresholdDays <= 0 {
		return fmt.Errorf("config: stall_threshold_days must be positive, got %d", c.StallThresholdDays)
	}
	if c.LeaderboardTop < 0 {
		return fmt.Errorf("config: leaderboard_top must not be negative, got %d", c.LeaderboardTop)
	}
	return nil
}
