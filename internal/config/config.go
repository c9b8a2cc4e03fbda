// Package config holds runtime settings for the CoinKeeper CLI.
package config

import "time"

// Config holds runtime settings.
//
// Fields:
//   - DatabasePath: path to the local sqlite database file.
//   - SessionTTL: session lifetime without "remember me".
//   - RememberTTL: session lifetime with "remember me".
type Config struct {
	DatabasePath string
	SessionTTL   time.Duration
	RememberTTL  time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "coinkeeper.db"
	c.SessionTTL = 24 * time.Hour
	c.RememberTTL = 7 * 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
