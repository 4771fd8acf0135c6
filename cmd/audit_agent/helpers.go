package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/karim/freezone-audit/internal/audit"
	"github.com/karim/freezone-audit/internal/config"
	"github.com/karim/freezone-audit/internal/extract"
	"github.com/karim/freezone-audit/internal/fetch"
	"github.com/karim/freezone-audit/internal/llm"
	"github.com/karim/freezone-audit/internal/remediate"
	"github.com/karim/freezone-audit/internal/store"
)

// loadConfig builds the effective configuration from the optional config
// file plus environment overrides.
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if v := os.Getenv("DATABASE_URL"); v != "" && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.APIKey == "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("SCRAPER_URL"); v != "" && cfg.ScraperURL == "" {
		cfg.ScraperURL = v
	}
	if flagVerbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRunner wires an audit runner from configuration. The returned cleanup
// releases the store connection and LLM client.
func newRunner(ctx context.Context, cfg *config.Config) (*audit.Runner, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("database URL required: set database_url in config or DATABASE_URL environment variable")
	}

	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	var classifier *llm.FieldClassifier
	if cfg.APIKey != "" {
		classifier, err = llm.NewFieldClassifier(ctx, cfg.APIKey)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		classifier.Verbose = cfg.Verbose
	}

	fetchOpts := fetch.DefaultOptions()
	if cfg.FetchTimeoutSec > 0 {
		fetchOpts.Timeout = time.Duration(cfg.FetchTimeoutSec) * time.Second
	}

	extractor := &extract.Extractor{
		FetchOptions: fetchOpts,
		MaxSubpages:  cfg.MaxSubpages,
		Verbose:      cfg.Verbose,
	}
	if classifier != nil {
		extractor.Classifier = classifier
	}
	if cfg.CaptureDir != "" {
		extractor.Capturer = &fetch.ScreenshotCapturer{Dir: cfg.CaptureDir, Verbose: cfg.Verbose}
	}

	var job remediate.CrawlJob
	if cfg.ScraperURL != "" {
		job = &remediate.HTTPCrawlJob{BaseURL: cfg.ScraperURL}
	}

	runner := &audit.Runner{
		Store:      db,
		Extractor:  extractor,
		Job:        job,
		Thresholds: cfg.DeltaThresholds(),
		Saver:      db,
		Verbose:    cfg.Verbose,
	}
	if cfg.WatchdogSec > 0 {
		runner.Watchdog = time.Duration(cfg.WatchdogSec) * time.Second
	}

	cleanup := func() {
		if classifier != nil {
			_ = classifier.Close()
		}
		db.Close()
	}
	return runner, cleanup, nil
}
