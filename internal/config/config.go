// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/karim/freezone-audit/internal/delta"
)

// Config is the CLI configuration, loadable from a JSON file. All fields are
// optional; missing values use defaults or come from flags and environment.
type Config struct {
	// Services
	DatabaseURL string `json:"database_url,omitempty"`
	APIKey      string `json:"api_key,omitempty"`
	ScraperURL  string `json:"scraper_url,omitempty" validate:"omitempty,url"`

	// Extraction
	CaptureDir      string `json:"capture_dir,omitempty"`
	FetchTimeoutSec int    `json:"fetch_timeout_sec,omitempty" validate:"min=0,max=300"`
	MaxSubpages     int    `json:"max_subpages,omitempty" validate:"min=0,max=6"`
	WatchdogSec     int    `json:"watchdog_sec,omitempty" validate:"min=0"`

	// Confidence scoring; zero value means delta.DefaultThresholds.
	Thresholds *delta.Thresholds `json:"thresholds,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks field ranges and URL shapes.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Thresholds != nil {
		if err := v.Struct(c.Thresholds); err != nil {
			return fmt.Errorf("config error: invalid thresholds: %w", err)
		}
	}
	return nil
}

// DeltaThresholds returns the configured confidence thresholds, falling back
// to the defaults.
func (c *Config) DeltaThresholds() delta.Thresholds {
	if c.Thresholds != nil {
		return *c.Thresholds
	}
	return delta.DefaultThresholds()
}
