package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "court_reports", cfg.ReportsDir)
	assert.Equal(t, 6, cfg.MaxRounds)
	assert.Equal(t, 100, cfg.MaxModelCalls)
	assert.Equal(t, 6, cfg.RetryAttempts)
	assert.Equal(t, time.Second, cfg.RetryBackoff)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"provider: openai\nmax_rounds: 3\nreports_dir: out\nretry_backoff: 2s\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, 3, cfg.MaxRounds)
	assert.Equal(t, "out", cfg.ReportsDir)
	assert.Equal(t, 2*time.Second, cfg.RetryBackoff)
	// Untouched keys keep their defaults
	assert.Equal(t, 6, cfg.RetryAttempts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\nmax_rounds: 3\n"), 0o644))

	t.Setenv("TRIBUNAL_PROVIDER", "anthropic")
	t.Setenv("TRIBUNAL_MAX_ROUNDS", "9")
	t.Setenv("TRIBUNAL_MODEL", "claude-sonnet-4-5")
	t.Setenv("TRIBUNAL_RETRY_BACKOFF", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, 9, cfg.MaxRounds)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBackoff)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidEnvNumbersIgnored(t *testing.T) {
	t.Setenv("TRIBUNAL_MAX_ROUNDS", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.MaxRounds)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "bedrock" },
			wantErr: "unknown provider",
		},
		{
			name:    "non-positive rounds",
			mutate:  func(c *Config) { c.MaxRounds = 0 },
			wantErr: "max_rounds",
		},
		{
			name:    "non-positive retries",
			mutate:  func(c *Config) { c.RetryAttempts = -1 },
			wantErr: "retry_attempts",
		},
		{
			name:    "negative backoff",
			mutate:  func(c *Config) { c.RetryBackoff = -time.Second },
			wantErr: "retry_backoff",
		},
		{
			name:    "empty reports dir",
			mutate:  func(c *Config) { c.ReportsDir = "" },
			wantErr: "reports_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
