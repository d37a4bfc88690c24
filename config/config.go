// Package config loads tranzlate settings from a YAML file and TRANZLATE_*
// environment variables, and builds the translators, caches and loggers
// the commands share.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/ti-oluwa/tranzlate"
	"github.com/ti-oluwa/tranzlate/cache"
	"github.com/ti-oluwa/tranzlate/engine"
)

// EnvPrefix is prepended to every environment variable, with dots in the key
// replaced by underscores: TRANZLATE_ENGINES_BING_KEY sets engines.bing.key.
const EnvPrefix = "TRANZLATE"

// Config is the full tranzlate configuration.
type Config struct {
	Engine    string          `mapstructure:"engine"`
	Source    string          `mapstructure:"source"`
	Target    string          `mapstructure:"target"`
	LogLevel  string          `mapstructure:"log_level"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Markup    MarkupConfig    `mapstructure:"markup"`
	Server    ServerConfig    `mapstructure:"server"`
	Engines   engine.Config   `mapstructure:"engines"`
}

// CacheConfig selects where language tables are kept.
type CacheConfig struct {
	RedisURL  string        `mapstructure:"redis_url"` // Empty keeps tables in memory
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// RateLimitConfig throttles engine calls. RPS 0 disables throttling.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// MarkupConfig tunes markup translation.
type MarkupConfig struct {
	BatchSize   int           `mapstructure:"batch_size"`
	Concurrency int           `mapstructure:"concurrency"`
	MinPause    time.Duration `mapstructure:"min_pause"`
	MaxPause    time.Duration `mapstructure:"max_pause"`
	Tags        []string      `mapstructure:"tags"` // Replaces the default translatable tags when set
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var defaults = map[string]any{
	"engine":    tranzlate.DefaultEngine,
	"source":    tranzlate.AutoDetect,
	"target":    tranzlate.DefaultTargetLang,
	"log_level": "info",

	"cache.redis_url":    "",
	"cache.ttl":          24 * time.Hour,
	"cache.key_prefix":   cache.DefaultKeyPrefix,
	"rate_limit.rps":     0.0,
	"rate_limit.burst":   1,
	"markup.batch_size":  tranzlate.DefaultBatchSize,
	"markup.concurrency": tranzlate.DefaultConcurrency,
	"markup.min_pause":   tranzlate.DefaultMinBatchPause,
	"markup.max_pause":   tranzlate.DefaultMaxBatchPause,
	"markup.tags":        []string{},
	"server.addr":        ":8080",

	"engines.timeout":           engine.DefaultTimeout,
	"engines.bing.key":          "",
	"engines.bing.region":       "",
	"engines.bing.endpoint":     "",
	"engines.google.endpoint":   "",
	"engines.mymemory.email":    "",
	"engines.mymemory.endpoint": "",
	"engines.systran.api_key":   "",
	"engines.systran.endpoint":  "",

	"engines.googlecloud.api_key":          "",
	"engines.googlecloud.credentials_file": "",
	"engines.googlecloud.endpoint":         "",

	"engines.openai.api_key":     "",
	"engines.openai.model":       "",
	"engines.openai.temperature": 0.0,
	"engines.openai.base_url":    "",
	"engines.openai.timeout":     time.Duration(0),
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path, or tranzlate.yaml from the working directory and the user
// config directory when path is empty, and applies environment overrides.
// A missing default file is not an error.
func Load(path string) (*Config, error) {
	return LoadWith(New(), path)
}

// LoadWith is Load on a caller-supplied viper instance, so flags bound to v
// take part in the lookup.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tranzlate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "tranzlate"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later and less clearly.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative")
	}
	if c.Markup.MaxPause < c.Markup.MinPause {
		return fmt.Errorf("markup.max_pause must not be less than markup.min_pause")
	}
	if c.Engines.Timeout < 0 {
		return fmt.Errorf("engines.timeout must not be negative")
	}
	return nil
}
