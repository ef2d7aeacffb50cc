package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sk-env", cfg.AI.APIKey)
	assert.Equal(t, 60*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, "builtin", cfg.Prompt.Source)
	assert.True(t, cfg.Baseline.Enabled)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")

	path := writeConfig(t, `
server:
  port: 9000
  writeTimeout: 2m
  allowedOrigins: ["https://shop.example.com"]
ai:
  apiKey: sk-file
  model: gpt-4.1-mini
  requestTimeout: 45s
  maxInputChars: 2000
prompt:
  source: file
  path: prompts/review.yaml
session:
  ttl: 10m
log:
  level: debug
baseline:
  enabled: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sk-file", cfg.AI.APIKey)
	assert.Equal(t, "gpt-4.1-mini", cfg.AI.Model)
	assert.Equal(t, 45*time.Second, cfg.AI.RequestTimeout)
	assert.Equal(t, 2000, cfg.AI.MaxInputChars)
	assert.Equal(t, "file", cfg.Prompt.Source)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Baseline.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvKeyWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "https://gateway.example.com/v1")

	cfg, err := Load(writeConfig(t, "ai:\n  apiKey: sk-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.AI.APIKey)
	assert.Equal(t, "https://gateway.example.com/v1", cfg.AI.BaseURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [port"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing key", func(c *Config) { c.AI.APIKey = "" }, "OPENAI_API_KEY"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"write timeout too short", func(c *Config) { c.Server.WriteTimeout = 30 * time.Second }, "writeTimeout"},
		{"file without path", func(c *Config) { c.Prompt.Source = "file" }, "prompt.path"},
		{"minio without key", func(c *Config) { c.Prompt.Source = "minio" }, "prompt.objectKey"},
		{"unknown source", func(c *Config) { c.Prompt.Source = "consul" }, "unknown"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "session.ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.AI.APIKey = "sk-test"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
