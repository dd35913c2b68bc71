package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.org/")

	cfg, err := Parse()
	require.NoError(t, err)
	require.Equal(t, "https://api.example.org", cfg.APIBaseURL)
	require.Equal(t, BackendBadger, cfg.StoreBackend)
	require.Equal(t, 10*time.Minute, cfg.PendingScanTTL)
	require.Equal(t, 15*time.Minute, cfg.CacheHygieneInterval)
	require.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "chapter", cfg.StorePrefix)
}

func TestParseRequiresBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	_, err := Parse()
	require.ErrorContains(t, err, "API_BASE_URL is required")
}

func TestParseBadDuration(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.org")
	t.Setenv("PENDING_SCAN_TTL", "ten minutes")

	_, err := Parse()
	require.ErrorContains(t, err, "parse env:")
}

func TestValidateBackends(t *testing.T) {
	base := Config{
		APIBaseURL:     "https://api.example.org",
		HTTPTimeout:    time.Second,
		PendingScanTTL: time.Minute,
		StorePrefix:    "chapter",
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"memory", func(c *Config) { c.StoreBackend = BackendMemory }, ""},
		{"postgres without dsn", func(c *Config) { c.StoreBackend = BackendPostgres }, "DATABASE_URL"},
		{"r2 without bucket", func(c *Config) { c.StoreBackend = BackendR2; c.R2AccountID = "acct" }, "R2_BUCKET_NAME"},
		{"unknown", func(c *Config) { c.StoreBackend = "etcd" }, "unknown STORE_BACKEND"},
		{"empty prefix", func(c *Config) { c.StoreBackend = BackendMemory; c.StorePrefix = " " }, "STORE_PREFIX"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
