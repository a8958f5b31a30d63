package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
app:
  name: energy-agent
database:
  postgres:
    host: localhost
    database: energy
    user: ${TEST_ENERGY_DB_USER}
workers:
  energy-validate-period:
    enabled: true
    timeout: 8000
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_ENERGY_DB_USER", "analyst")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "analyst", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "energy-question-examples", cfg.Database.Elasticsearch.Index)

	assert.Equal(t, "gemini-1.5-flash", cfg.APIs.Gemini.Model)
	assert.Equal(t, 15000, cfg.APIs.Gemini.Timeout)
	assert.Equal(t, "energy.questions", cfg.Transport.NATS.Subject)
	assert.InDelta(t, 0.20, cfg.Agent.Tariff, 1e-9)
	assert.Equal(t, "energy-agent", cfg.Agent.Source)
	assert.Equal(t, ":8080", cfg.Server.Address)

	w := cfg.Workers["energy-validate-period"]
	assert.Equal(t, 8000, w.Timeout)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 3, w.MaxRetries)
}

func TestLoadFromFile_APIKeyFromEnv(t *testing.T) {
	t.Setenv("TEST_ENERGY_DB_USER", "analyst")
	t.Setenv("GEMINI_API_KEY", "secret-key")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.APIs.Gemini.APIKey)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Database.Postgres = PostgresConfig{Host: "db", Database: "energy", User: "u"}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing host", func(c *Config) { c.Database.Postgres.Host = "" }, "database.postgres.host"},
		{"camunda without broker", func(c *Config) { c.Camunda.Enabled = true }, "camunda.broker_address"},
		{"nats without url", func(c *Config) { c.Transport.NATS.Enabled = true }, "transport.nats.url"},
		{"redis without address", func(c *Config) { c.Database.Redis.Enabled = true }, "database.redis.address"},
		{"negative tariff", func(c *Config) { c.Agent.Tariff = -1 }, "agent.tariff"},
		{"temperature out of range", func(c *Config) { c.APIs.Gemini.Temperature = 3 }, "temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"energy-execute-strategy": {Enabled: false, Timeout: 1000},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "energy-execute-strategy"))
	assert.True(t, IsWorkerEnabled(cfg, "energy-build-response"))
	assert.Equal(t, 30000, GetWorkerConfig(cfg, "energy-build-response").Timeout)
	assert.Equal(t, 1000, GetWorkerConfig(cfg, "energy-execute-strategy").Timeout)
}
