// Package config loads tribunal configuration from an optional YAML file,
// a .env file and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider identifiers accepted in configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds everything needed to run a tribunal pipeline.
type Config struct {
	// Provider selects the model backend: "anthropic" or "openai".
	Provider string `yaml:"provider"`
	// Model is the provider-specific model identifier. Empty selects the
	// provider default.
	Model string `yaml:"model"`
	// APIKey overrides the provider's environment credential.
	APIKey string `yaml:"api_key"`

	// ReportsDir is where verdict files are written.
	ReportsDir string `yaml:"reports_dir"`
	// MaxRounds caps the deliberation loop.
	MaxRounds int `yaml:"max_rounds"`
	// MaxModelCalls bounds model calls per run. Zero means unlimited.
	MaxModelCalls int `yaml:"max_model_calls"`

	// RetryAttempts bounds model call retries.
	RetryAttempts int `yaml:"retry_attempts"`
	// RetryBackoff is the fixed delay between retry attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Provider:      ProviderAnthropic,
		ReportsDir:    "court_reports",
		MaxRounds:     6,
		MaxModelCalls: 100,
		RetryAttempts: 6,
		RetryBackoff:  time.Second,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load builds a Config from defaults, an optional YAML file at path (empty
// path skips the file), a .env file in the working directory and process
// environment variables. Later sources win.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv overlays TRIBUNAL_* environment variables onto the config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TRIBUNAL_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("TRIBUNAL_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("TRIBUNAL_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("TRIBUNAL_REPORTS_DIR"); v != "" {
		cfg.ReportsDir = v
	}
	if v := os.Getenv("TRIBUNAL_MAX_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRounds = n
		}
	}
	if v := os.Getenv("TRIBUNAL_MAX_MODEL_CALLS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxModelCalls = n
		}
	}
	if v := os.Getenv("TRIBUNAL_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RetryAttempts = n
		}
	}
	if v := os.Getenv("TRIBUNAL_RETRY_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetryBackoff = d
		}
	}
	if v := os.Getenv("TRIBUNAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TRIBUNAL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.MaxRounds <= 0 {
		return fmt.Errorf("max_rounds must be positive, got %d", c.MaxRounds)
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("retry_attempts must be positive, got %d", c.RetryAttempts)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry_backoff must not be negative")
	}
	if c.ReportsDir == "" {
		return fmt.Errorf("reports_dir must not be empty")
	}

	return nil
}
