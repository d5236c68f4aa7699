// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Modertool999/arb-detection/internal/spread"
)

// App captures process-wide runtime settings such as name, environment, listeners and logging.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	StaticDir   string `yaml:"static_dir"`
}

// Scan holds the default pair and scoring parameters. HTTP queries may override each field.
type Scan struct {
	DomesticTicker string  `yaml:"domestic_ticker"`
	ForeignTicker  string  `yaml:"foreign_ticker"`
	FXTicker       string  `yaml:"fx_ticker"`
	Period         string  `yaml:"period"`
	Interval       string  `yaml:"interval"`
	Window         int     `yaml:"window"`
	Threshold      float64 `yaml:"threshold"`
	PenceDivisor   float64 `yaml:"pence_divisor"`
	ShareRatio     int     `yaml:"share_ratio"`
}

// Params converts the scan block into the scorer's parameter bundle.
func (s Scan) Params() spread.Params {
	return spread.Params{
		Window:       s.Window,
		Threshold:    s.Threshold,
		PenceDivisor: s.PenceDivisor,
		ShareRatio:   s.ShareRatio,
	}
}

// Feed selects and tunes the price provider.
type Feed struct {
	Provider        string `yaml:"provider"`
	BaseURL         string `yaml:"base_url"`
	DataDir         string `yaml:"data_dir"`
	TimeoutMs       int    `yaml:"timeout_ms"`
	ResampleMinutes int    `yaml:"resample_minutes"`
}

// Timeout returns the per-request HTTP timeout.
func (f Feed) Timeout() time.Duration {
	return time.Duration(f.TimeoutMs) * time.Millisecond
}

// Resample returns the optional resampling bucket, zero when disabled.
func (f Feed) Resample() time.Duration {
	return time.Duration(f.ResampleMinutes) * time.Minute
}

// Store configures on-disk artifacts.
type Store struct {
	SnapshotPath string `yaml:"snapshot_path"`
	TradesPath   string `yaml:"trades_path"`
	DataDir      string `yaml:"data_dir"`
	RecentRuns   int    `yaml:"recent_runs"`

	// JournalPath keeps run history in a JSON-lines file when no database is configured.
	JournalPath string `yaml:"journal_path"`
}

// Database configures the optional Postgres run history. An empty host disables it.
type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
}

// Enabled reports whether run history should be written to Postgres.
func (d Database) Enabled() bool { return d.Host != "" }

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Scan     Scan     `yaml:"scan"`
	Feed     Feed     `yaml:"feed"`
	Store    Store    `yaml:"store"`
	Database Database `yaml:"database"`
}

// Load reads a YAML file from disk, expanding ${VAR} references, and hydrates a Config struct.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &cfg, nil
}

// LoadAndValidate loads config, applies environment overrides and defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Default returns a config populated purely from defaults and the environment.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyEnv()
	cfg.applyDefaults()
	return cfg
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
