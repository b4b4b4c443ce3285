package config

import "time"

// Config holds runtime settings for judgectl.
//
// Fields:
//   - ServerAddr: base URL of the judge HTTP API.
//   - DataDir: directory (relative to the working directory) holding the
//     saved token pair.
//   - RequestTimeout: deadline for a single API call.
type Config struct {
	ServerAddr     string
	DataDir        string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:8080"
	c.DataDir = ".judgectl"
	c.RequestTimeout = 10 * time.Second
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
