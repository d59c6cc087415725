package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-projection/internal/cache"
	"github.com/simaogato/wealthflow-projection/internal/usecase/simulation"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DB_CONN_STR", "DB_HOST", "GRPC_PORT", "HTTP_PORT", "API_TOKEN", "CACHE_TTL", "CACHE_MAX_ENTRIES", "CACHE_EVICTION_MARGIN", "CACHE_PURGE_SCHEDULE", "PROJECTION_ASSUMPTIONS_FILE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.GRPCPort)
	assert.Equal(t, ":8081", cfg.HTTPPort)
	assert.Equal(t, "dev-token", cfg.APIToken)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 100, cfg.Cache.MaxEntries)
	assert.Equal(t, 10, cfg.Cache.EvictionMargin)
	assert.Equal(t, "@every 1m", cfg.PurgeSpec)
	assert.Equal(t, simulation.DefaultAssumptions(), cfg.Assumptions)
	assert.Contains(t, cfg.DBConnStr, "host=localhost")
	assert.Contains(t, cfg.DBConnStr, "dbname=wealthflow")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("DB_CONN_STR", "postgres://u:p@db/wf")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CACHE_MAX_ENTRIES", "500")
	t.Setenv("CACHE_EVICTION_MARGIN", "25")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("PROJECTION_ASSUMPTIONS_FILE", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/wf", cfg.DBConnStr)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 500, cfg.Cache.MaxEntries)
	assert.Equal(t, 25, cfg.Cache.EvictionMargin)
	assert.True(t, cfg.LogPretty)
}

func TestLoad_AssumptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assumptions.toml")
	require.NoError(t, os.WriteFile(path, []byte("annual_growth_rate = 0.07\ncurrency = \"USD\"\n"), 0o600))
	t.Setenv("PROJECTION_ASSUMPTIONS_FILE", path)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 0.07, cfg.Assumptions.AnnualGrowthRate)
	assert.Equal(t, "USD", cfg.Assumptions.Currency)
	// Missing keys keep their defaults
	assert.Equal(t, 0.02, cfg.Assumptions.RiskFreeRate)
	assert.Equal(t, 240, cfg.Assumptions.DefaultLoanMonths)
}

func TestLoad_BadAssumptionsFile(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		t.Setenv("PROJECTION_ASSUMPTIONS_FILE", filepath.Join(t.TempDir(), "nope.toml"))

		_, err := Load()

		assert.Error(t, err)
	})

	t.Run("Malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("annual_growth_rate = = 1"), 0o600))
		t.Setenv("PROJECTION_ASSUMPTIONS_FILE", path)

		_, err := Load()

		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIToken:    "token",
			Cache:       cache.DefaultOptions(),
			PurgeSpec:   "@every 1m",
			Assumptions: simulation.DefaultAssumptions(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "Valid", mutate: func(c *Config) {}},
		{name: "Empty token", mutate: func(c *Config) { c.APIToken = "" }, wantErr: true},
		{name: "Zero TTL", mutate: func(c *Config) { c.Cache.TTL = 0 }, wantErr: true},
		{name: "Margin above max", mutate: func(c *Config) { c.Cache.EvictionMargin = 200 }, wantErr: true},
		{name: "Bad cron spec", mutate: func(c *Config) { c.PurgeSpec = "every minute" }, wantErr: true},
		{name: "Standard cron spec", mutate: func(c *Config) { c.PurgeSpec = "*/5 * * * *" }},
		{name: "Growth at -100%", mutate: func(c *Config) { c.Assumptions.AnnualGrowthRate = -1 }, wantErr: true},
		{name: "Liquid share above 1", mutate: func(c *Config) { c.Assumptions.LiquidShare = 1.5 }, wantErr: true},
		{name: "No currency", mutate: func(c *Config) { c.Assumptions.Currency = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
