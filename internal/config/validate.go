package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownProviders = map[string]bool{"yahoo": true, "csv": true, "stub": true}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.App.ListenAddr == "" {
		return errors.New("app.listen_addr is required")
	}
	if err := c.Scan.Params().Validate(); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if c.Scan.DomesticTicker == "" || c.Scan.ForeignTicker == "" || c.Scan.FXTicker == "" {
		return errors.New("scan tickers are required")
	}
	if !knownProviders[strings.ToLower(c.Feed.Provider)] {
		return fmt.Errorf("feed.provider %q is not one of yahoo, csv, stub", c.Feed.Provider)
	}
	if c.Feed.TimeoutMs < 0 {
		return fmt.Errorf("feed.timeout_ms must be >= 0, got %d", c.Feed.TimeoutMs)
	}
	if c.Feed.ResampleMinutes < 0 {
		return fmt.Errorf("feed.resample_minutes must be >= 0, got %d", c.Feed.ResampleMinutes)
	}
	if c.Store.RecentRuns < 1 {
		return errors.New("store.recent_runs must be >= 1")
	}
	if c.Database.Enabled() {
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	}
	return nil
}

func (db *Database) validate(prefix string) error {
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Port < 1 || db.Port > 65535 {
		return fmt.Errorf("%s.port must be between 1 and 65535, got %d", prefix, db.Port)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	return nil
}
