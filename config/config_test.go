package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty source",
			mutate: func(cfg *Config) {
				cfg.Source = ""
			},
			wantErr: "source",
		},
		{
			name: "negative concurrency",
			mutate: func(cfg *Config) {
				cfg.Concurrency = -1
			},
			wantErr: "concurrency",
		},
		{
			name: "zero concurrency",
			mutate: func(cfg *Config) {
				cfg.Concurrency = 0
			},
			wantErr: "concurrency",
		},
		{
			name: "empty database path",
			mutate: func(cfg *Config) {
				cfg.DBPath = ""
			},
			wantErr: "database path",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: "user agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Source = "urls.txt"
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = "urls.txt"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("SCRAPER_TEST_CONN", "25")
	value, ok, err := EnvInt("SCRAPER_TEST_CONN")
	if err != nil || !ok || value != 25 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (25, true, nil)", value, ok, err)
	}

	t.Setenv("SCRAPER_TEST_CONN", "not-a-number")
	if _, _, err := EnvInt("SCRAPER_TEST_CONN"); err == nil {
		t.Fatalf("expected parse error for non-numeric value")
	}

	if _, ok, _ := EnvInt("SCRAPER_TEST_UNSET"); ok {
		t.Fatalf("unset variable should report ok=false")
	}
}
