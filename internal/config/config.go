// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/simaogato/wealthflow-projection/internal/cache"
	"github.com/simaogato/wealthflow-projection/internal/usecase/simulation"
)

// Config holds application configuration
type Config struct {
	DBConnStr   string
	GRPCPort    string
	HTTPPort    string
	APIToken    string
	LogLevel    string
	LogPretty   bool
	Cache       cache.Options
	PurgeSpec   string // cron spec for purging expired cache entries
	Assumptions simulation.Assumptions
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DBConnStr: dbConnStr(),
		GRPCPort:  getEnv("GRPC_PORT", ":8080"),
		HTTPPort:  getEnv("HTTP_PORT", ":8081"),
		APIToken:  getEnv("API_TOKEN", "dev-token"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		Cache: cache.Options{
			TTL:            getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			MaxEntries:     getEnvAsInt("CACHE_MAX_ENTRIES", 100),
			EvictionMargin: getEnvAsInt("CACHE_EVICTION_MARGIN", 10),
		},
		PurgeSpec:   getEnv("CACHE_PURGE_SCHEDULE", "@every 1m"),
		Assumptions: simulation.DefaultAssumptions(),
	}

	if path := getEnv("PROJECTION_ASSUMPTIONS_FILE", ""); path != "" {
		assumptions, err := LoadAssumptions(path)
		if err != nil {
			return nil, err
		}
		cfg.Assumptions = assumptions
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadAssumptions reads projection assumptions from a TOML file.
// Keys missing from the file keep their default value.
func LoadAssumptions(path string) (simulation.Assumptions, error) {
	assumptions := simulation.DefaultAssumptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return assumptions, fmt.Errorf("failed to read assumptions file: %w", err)
	}
	if err := toml.Unmarshal(data, &assumptions); err != nil {
		return assumptions, fmt.Errorf("failed to parse assumptions file: %w", err)
	}
	return assumptions, nil
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	if c.APIToken == "" {
		return errors.New("API_TOKEN must not be empty")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		return errors.New("CACHE_MAX_ENTRIES must be positive")
	}
	if c.Cache.EvictionMargin < 0 || c.Cache.EvictionMargin >= c.Cache.MaxEntries {
		return errors.New("CACHE_EVICTION_MARGIN must be between 0 and CACHE_MAX_ENTRIES")
	}
	if _, err := cron.ParseStandard(c.PurgeSpec); err != nil {
		return fmt.Errorf("invalid CACHE_PURGE_SCHEDULE: %w", err)
	}

	a := c.Assumptions
	if a.AnnualGrowthRate <= -1 {
		return errors.New("annual growth rate must be above -100%")
	}
	if a.LiquidShare < 0 || a.LiquidShare > 1 {
		return errors.New("liquid share must be between 0 and 1")
	}
	if a.CapitalGainsTaxRate < 0 || a.CapitalGainsTaxRate > 1 {
		return errors.New("capital gains tax rate must be between 0 and 1")
	}
	if a.DefaultLoanMonths <= 0 {
		return errors.New("default loan duration must be positive")
	}
	if a.Currency == "" {
		return errors.New("currency must not be empty")
	}
	return nil
}

// dbConnStr returns DB_CONN_STR, or builds it from individual vars (Docker friendly)
func dbConnStr() string {
	if s := getEnv("DB_CONN_STR", ""); s != "" {
		return s
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "wealthflow"),
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
