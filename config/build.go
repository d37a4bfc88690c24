package config

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ti-oluwa/tranzlate"
	"github.com/ti-oluwa/tranzlate/cache"
	"github.com/ti-oluwa/tranzlate/engine"
)

// Logger builds a production zap logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	if level == zapcore.DebugLevel {
		zc.Development = true
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return zc.Build()
}

// NewCache returns a Redis cache when a URL is configured, otherwise an
// in-memory one.
func (c *Config) NewCache(ctx context.Context) (cache.Cache, error) {
	if c.Cache.RedisURL == "" {
		return cache.NewMemory(c.Cache.TTL), nil
	}
	return cache.NewRedis(ctx, cache.RedisConfig{
		URL:       c.Cache.RedisURL,
		TTL:       c.Cache.TTL,
		KeyPrefix: c.Cache.KeyPrefix,
	})
}

// TranslatorOptions converts the config into translator options.
func (c *Config) TranslatorOptions(store cache.Cache, logger *zap.Logger) []tranzlate.Option {
	opts := []tranzlate.Option{
		tranzlate.WithEngineConfig(c.Engines),
		tranzlate.WithRateLimit(c.RateLimit.RPS, c.RateLimit.Burst),
		tranzlate.WithConcurrency(c.Markup.Concurrency),
		tranzlate.WithBatchSize(c.Markup.BatchSize),
		tranzlate.WithBatchPause(c.Markup.MinPause, c.Markup.MaxPause),
	}
	if store != nil {
		opts = append(opts, tranzlate.WithCache(store))
	}
	if logger != nil {
		opts = append(opts, tranzlate.WithLogger(logger))
	}
	if len(c.Markup.Tags) > 0 {
		opts = append(opts, tranzlate.WithTranslatableTags(c.Markup.Tags...))
	}
	return opts
}

// Factory hands out one Translator per engine name, built on first use.
type Factory struct {
	cfg      *Config
	store    cache.Cache
	logger   *zap.Logger
	registry *engine.Registry

	mu          sync.Mutex
	translators map[string]*tranzlate.Translator
}

// NewFactory creates a Factory. A nil registry selects engine.DefaultRegistry.
func NewFactory(cfg *Config, store cache.Cache, logger *zap.Logger, registry *engine.Registry) *Factory {
	if registry == nil {
		registry = engine.DefaultRegistry
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		cfg:         cfg,
		store:       store,
		logger:      logger,
		registry:    registry,
		translators: make(map[string]*tranzlate.Translator),
	}
}

// Translator returns the translator for name, or the configured default
// engine when name is empty.
func (f *Factory) Translator(name string) (*tranzlate.Translator, error) {
	if name == "" {
		name = f.cfg.Engine
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if t, ok := f.translators[name]; ok {
		return t, nil
	}

	opts := append(f.cfg.TranslatorOptions(f.store, f.logger), tranzlate.WithRegistry(f.registry))
	t, err := tranzlate.New(name, opts...)
	if err != nil {
		return nil, err
	}
	f.translators[name] = t
	return t, nil
}

// Engines returns the engine names the factory can build.
func (f *Factory) Engines() []string {
	return f.registry.Names()
}

// Config returns the config the factory was built from.
func (f *Factory) Config() *Config {
	return f.cfg
}
