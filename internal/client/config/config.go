package config

import "time"

// Config holds runtime settings for the RecipeBox CLI.
//
// Fields:
//   - ServerURL: base URL of the RecipeBox HTTP API.
//   - PageLimit: page size requested when browsing recipes.
//   - RequestTimeout: per-attempt HTTP timeout.
//   - RetryMax: how many times a failed request is retried.
type Config struct {
	ServerURL      string
	PageLimit      int
	RequestTimeout time.Duration
	RetryMax       int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.PageLimit = 10
	c.RequestTimeout = 10 * time.Second
	c.RetryMax = 2
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
