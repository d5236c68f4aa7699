package config

import "github.com/Modertool999/arb-detection/internal/spread"

// Default values for optional configuration fields.
const (
	DefaultName           = "arb-detection"
	DefaultEnv            = "dev"
	DefaultListenAddr     = ":8080"
	DefaultMetricsAddr    = ":9090"
	DefaultLogLevel       = "info"
	DefaultStaticDir      = "static"
	DefaultDomesticTicker = "HSBC"
	DefaultForeignTicker  = "HSBA.L"
	DefaultFXTicker       = "GBPUSD=X"
	DefaultPeriod         = "6mo"
	DefaultInterval       = "1d"
	DefaultProvider       = "yahoo"
	DefaultFeedBaseURL    = "https://query1.finance.yahoo.com"
	DefaultDataDir        = "data"
	DefaultTimeoutMs      = 10000
	DefaultSnapshotPath   = "data/cross_listed_signals.csv"
	DefaultTradesPath     = "data/backtest_trades.csv"
	DefaultRecentRuns     = 50
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 4
)

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = DefaultName
	}
	if c.App.Env == "" {
		c.App.Env = DefaultEnv
	}
	if c.App.ListenAddr == "" {
		c.App.ListenAddr = DefaultListenAddr
	}
	if c.App.MetricsAddr == "" {
		c.App.MetricsAddr = DefaultMetricsAddr
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = DefaultLogLevel
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = DefaultStaticDir
	}

	if c.Scan.DomesticTicker == "" {
		c.Scan.DomesticTicker = DefaultDomesticTicker
	}
	if c.Scan.ForeignTicker == "" {
		c.Scan.ForeignTicker = DefaultForeignTicker
	}
	if c.Scan.FXTicker == "" {
		c.Scan.FXTicker = DefaultFXTicker
	}
	if c.Scan.Period == "" {
		c.Scan.Period = DefaultPeriod
	}
	if c.Scan.Interval == "" {
		c.Scan.Interval = DefaultInterval
	}
	if c.Scan.Window == 0 {
		c.Scan.Window = spread.DefaultWindow
	}
	if c.Scan.Threshold == 0 {
		c.Scan.Threshold = spread.DefaultThreshold
	}
	if c.Scan.PenceDivisor == 0 {
		c.Scan.PenceDivisor = spread.DefaultPenceDivisor
	}
	if c.Scan.ShareRatio == 0 {
		c.Scan.ShareRatio = spread.DefaultShareRatio
	}

	if c.Feed.Provider == "" {
		c.Feed.Provider = DefaultProvider
	}
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = DefaultFeedBaseURL
	}
	if c.Feed.DataDir == "" {
		c.Feed.DataDir = DefaultDataDir
	}
	if c.Feed.TimeoutMs == 0 {
		c.Feed.TimeoutMs = DefaultTimeoutMs
	}

	if c.Store.SnapshotPath == "" {
		c.Store.SnapshotPath = DefaultSnapshotPath
	}
	if c.Store.TradesPath == "" {
		c.Store.TradesPath = DefaultTradesPath
	}
	if c.Store.DataDir == "" {
		c.Store.DataDir = DefaultDataDir
	}
	if c.Store.RecentRuns == 0 {
		c.Store.RecentRuns = DefaultRecentRuns
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
}
