package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted on top of the YAML file.
const (
	EnvConfigPath = "ADRSCAN_CONFIG"
	EnvListenAddr = "ADRSCAN_LISTEN_ADDR"
	EnvLogLevel   = "ADRSCAN_LOG_LEVEL"
	EnvDBPassword = "ADRSCAN_DATABASE_PASSWORD"
	EnvProvider   = "ADRSCAN_FEED_PROVIDER"
)

// LoadDotEnv reads .env into the process environment if present.
func LoadDotEnv() {
	_ = godotenv.Load() // best-effort
}

// Path returns the config file to load: ADRSCAN_CONFIG when set, otherwise fallback.
func Path(fallback string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return fallback
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.App.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvProvider); v != "" {
		c.Feed.Provider = v
	}
}
