package config

import (
	"os"
	"runtime"
	"strconv"

	"priorelicit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Pipeline PipelineConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings.
// An empty URL selects the in-memory settings and record stores.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a Postgres store is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// PipelineConfig holds the estimation pipeline defaults
type PipelineConfig struct {
	BootstrapIterations int
	// BootstrapSampleSize of 0 resamples as many entities as the dataset has
	BootstrapSampleSize int
	FitTopN             int
	FitGridPoints       int
	NumChecks           int
	NumSamples          int
	KDEGridPoints       int
	// Seed of 0 seeds every request from the clock
	Seed              int64
	FitWorkers        int
	SignificantDigits int
	// MaxSamples caps what one request may make the service hold: a raw or histogram
	// sample, and num_checks × num_samples simulated responses
	MaxSamples int
}

// DefaultPipelineConfig returns the documented defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BootstrapIterations: 100,
		BootstrapSampleSize: 0,
		FitTopN:             3,
		FitGridPoints:       1000,
		NumChecks:           10,
		NumSamples:          100,
		KDEGridPoints:       100,
		Seed:                0,
		FitWorkers:          runtime.GOMAXPROCS(0),
		SignificantDigits:   4,
		MaxSamples:          1_000_000,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server:   *loadServerConfig(),
		Pipeline: *loadPipelineConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadPipelineConfig() *PipelineConfig {
	d := DefaultPipelineConfig()
	return &PipelineConfig{
		BootstrapIterations: getEnvIntOrDefault("BOOTSTRAP_ITERATIONS", d.BootstrapIterations),
		BootstrapSampleSize: getEnvIntOrDefault("BOOTSTRAP_SAMPLE_SIZE", d.BootstrapSampleSize),
		FitTopN:             getEnvIntOrDefault("FIT_TOP_N", d.FitTopN),
		FitGridPoints:       getEnvIntOrDefault("FIT_GRID_POINTS", d.FitGridPoints),
		NumChecks:           getEnvIntOrDefault("NUM_CHECKS", d.NumChecks),
		NumSamples:          getEnvIntOrDefault("NUM_SAMPLES", d.NumSamples),
		KDEGridPoints:       getEnvIntOrDefault("KDE_GRID_POINTS", d.KDEGridPoints),
		Seed:                getEnvInt64OrDefault("RNG_SEED", d.Seed),
		FitWorkers:          getEnvIntOrDefault("FIT_WORKERS", d.FitWorkers),
		SignificantDigits:   getEnvIntOrDefault("SIGNIFICANT_DIGITS", d.SignificantDigits),
		MaxSamples:          getEnvIntOrDefault("MAX_SAMPLES", d.MaxSamples),
	}
}

// Validate checks pipeline settings for values no run could use
func (p PipelineConfig) Validate() error {
	switch {
	case p.BootstrapIterations < 2:
		return errors.ConfigInvalid("BOOTSTRAP_ITERATIONS must be at least 2")
	case p.BootstrapSampleSize < 0:
		return errors.ConfigInvalid("BOOTSTRAP_SAMPLE_SIZE must not be negative")
	case p.FitTopN < 0:
		return errors.ConfigInvalid("FIT_TOP_N must not be negative")
	case p.FitGridPoints < 2:
		return errors.ConfigInvalid("FIT_GRID_POINTS must be at least 2")
	case p.NumChecks < 1:
		return errors.ConfigInvalid("NUM_CHECKS must be at least 1")
	case p.NumSamples < 2:
		return errors.ConfigInvalid("NUM_SAMPLES must be at least 2")
	case p.KDEGridPoints < 2:
		return errors.ConfigInvalid("KDE_GRID_POINTS must be at least 2")
	case p.FitWorkers < 1:
		return errors.ConfigInvalid("FIT_WORKERS must be at least 1")
	case p.SignificantDigits < 2 || p.SignificantDigits > 8:
		return errors.ConfigInvalid("SIGNIFICANT_DIGITS must be between 2 and 8")
	case p.MaxSamples < p.NumChecks*p.NumSamples:
		return errors.ConfigInvalid("MAX_SAMPLES must cover NUM_CHECKS × NUM_SAMPLES")
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return config.Pipeline.Validate()
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
