package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds scraper configuration.
type Config struct {
	Source      string // URL list file path, or a single literal URL
	Concurrency int
	DBPath      string
	Timeout     time.Duration
	UserAgent   string
	MetricsAddr string
	Verbose     bool
}

// MaxConcurrency bounds the effective worker count after clamping to the
// number of pending URLs.
const MaxConcurrency = 10000

// DefaultConfig returns conservative defaults matching the historical CLI.
func DefaultConfig() *Config {
	return &Config{
		Concurrency: 10,
		DBPath:      "listings.db",
		Timeout:     30 * time.Second,
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		Verbose:     false,
	}
}

// Validate ensures all configuration values are coherent. The effective
// concurrency bound is checked at run time, after clamping to the URL count.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source cannot be empty")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}

// EnvInt reads an integer environment variable. The second return reports
// whether the variable was set.
func EnvInt(key string) (int, bool, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return value, true, nil
}

// EnvString reads a string environment variable.
func EnvString(key string) (string, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}
