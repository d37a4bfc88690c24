package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ti-oluwa/tranzlate"
	"github.com/ti-oluwa/tranzlate/cache"
	"github.com/ti-oluwa/tranzlate/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tranzlate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, tranzlate.DefaultEngine, cfg.Engine)
	assert.Equal(t, "auto", cfg.Source)
	assert.Equal(t, "en", cfg.Target)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, cache.DefaultKeyPrefix, cfg.Cache.KeyPrefix)
	assert.Equal(t, tranzlate.DefaultBatchSize, cfg.Markup.BatchSize)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, engine.DefaultTimeout, cfg.Engines.Timeout)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
engine: mymemory
target: yo
log_level: debug
cache:
  redis_url: redis://localhost:6379/1
  ttl: 1h
rate_limit:
  rps: 2.5
  burst: 3
markup:
  batch_size: 10
  min_pause: 0s
  max_pause: 0s
  tags: [p, h1]
engines:
  timeout: 10s
  bing:
    key: bing-key
    region: westeurope
  mymemory:
    email: dev@example.com
  openai:
    model: gpt-4o
    temperature: 0.1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mymemory", cfg.Engine)
	assert.Equal(t, "yo", cfg.Target)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.Equal(t, 10, cfg.Markup.BatchSize)
	assert.Equal(t, []string{"p", "h1"}, cfg.Markup.Tags)
	assert.Equal(t, 10*time.Second, cfg.Engines.Timeout)
	assert.Equal(t, "bing-key", cfg.Engines.Bing.Key)
	assert.Equal(t, "westeurope", cfg.Engines.Bing.Region)
	assert.Equal(t, "dev@example.com", cfg.Engines.MyMemory.Email)
	assert.Equal(t, "gpt-4o", cfg.Engines.OpenAI.Model)
	assert.InDelta(t, 0.1, cfg.Engines.OpenAI.Temperature, 0.0001)
}

func TestLoad_Env(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TRANZLATE_ENGINE", "systran")
	t.Setenv("TRANZLATE_ENGINES_SYSTRAN_API_KEY", "secret")
	t.Setenv("TRANZLATE_CACHE_TTL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "systran", cfg.Engine)
	assert.Equal(t, "secret", cfg.Engines.Systran.APIKey)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "engine: google\n")
	t.Setenv("TRANZLATE_ENGINE", "bing")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bing", cfg.Engine)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
		{"negative rps", func(c *Config) { c.RateLimit.RPS = -1 }},
		{"pause range", func(c *Config) { c.Markup.MinPause = time.Second; c.Markup.MaxPause = 0 }},
		{"negative timeout", func(c *Config) { c.Engines.Timeout = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: "info"}
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
