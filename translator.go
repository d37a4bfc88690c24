package tranzlate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ti-oluwa/tranzlate/cache"
	"github.com/ti-oluwa/tranzlate/engine"
	"github.com/ti-oluwa/tranzlate/processor"
)

// Translator routes translation requests to one engine.
type Translator struct {
	name     string
	engine   engine.Engine // Wrapped with the rate limiter when one is set
	base     engine.Engine
	cfg      engine.Config
	registry *engine.Registry
	logger   *zap.Logger
	cache    cache.Cache
	limiter  *rate.Limiter

	concurrency int
	batchSize   int
	minPause    time.Duration
	maxPause    time.Duration
	html        *processor.HTMLProcessor
	xml         *processor.XMLProcessor

	mu      sync.Mutex
	langs   engine.LanguageMap
	sources map[string]string // Lower-cased source code to canonical spelling
}

// Option is a functional option for configuring the Translator.
type Option func(*Translator)

// WithEngineConfig sets engine credentials, endpoints and the default timeout.
func WithEngineConfig(cfg engine.Config) Option {
	return func(t *Translator) {
		t.cfg = cfg
	}
}

// WithRegistry sets the registry engine names are resolved against.
func WithRegistry(r *engine.Registry) Option {
	return func(t *Translator) {
		t.registry = r
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Translator) {
		t.logger = logger
	}
}

// WithCache stores language tables in c so they outlive the Translator.
func WithCache(c cache.Cache) Option {
	return func(t *Translator) {
		t.cache = c
	}
}

// WithRateLimit throttles engine calls to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(t *Translator) {
		if rps <= 0 {
			t.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithConcurrency bounds in-flight engine calls within one operation.
func WithConcurrency(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// WithBatchSize sets how many markup segments are translated per batch.
func WithBatchSize(n int) Option {
	return func(t *Translator) {
		if n > 0 {
			t.batchSize = n
		}
	}
}

// WithBatchPause sets the random pause range between markup batches.
// A zero range disables pausing.
func WithBatchPause(minPause, maxPause time.Duration) Option {
	return func(t *Translator) {
		if maxPause < minPause {
			maxPause = minPause
		}
		t.minPause = minPause
		t.maxPause = maxPause
	}
}

// WithTranslatableTags replaces the HTML tags whose text is translated.
func WithTranslatableTags(tags ...string) Option {
	return func(t *Translator) {
		t.html = processor.NewHTMLProcessorWithTags(tags)
	}
}

// Engines returns the names of the built-in engines, sorted.
func Engines() []string {
	return engine.DefaultRegistry.Names()
}

// AddTranslatableTag adds an HTML tag to the default translatable set.
func AddTranslatableTag(tag string) {
	processor.AddTranslatableTag(tag)
}

// New creates a Translator for the named engine. An empty name selects
// DefaultEngine.
func New(name string, opts ...Option) (*Translator, error) {
	t := newTranslator(opts)

	if name == "" {
		name = DefaultEngine
	}
	if !t.registry.Has(name) {
		return nil, &InvalidEngineError{Name: name, Available: t.registry.Names()}
	}

	e, err := t.registry.New(name, t.cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s engine: %w", name, err)
	}
	t.setEngine(name, e)
	return t, nil
}

// NewWithEngine creates a Translator around an engine built elsewhere.
func NewWithEngine(e engine.Engine, opts ...Option) *Translator {
	t := newTranslator(opts)
	t.setEngine(e.Name(), e)
	return t
}

func newTranslator(opts []Option) *Translator {
	t := &Translator{
		registry:    engine.DefaultRegistry,
		logger:      zap.NewNop(),
		concurrency: DefaultConcurrency,
		batchSize:   DefaultBatchSize,
		minPause:    DefaultMinBatchPause,
		maxPause:    DefaultMaxBatchPause,
		xml:         processor.NewXMLProcessor(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.html == nil {
		t.html = processor.NewHTMLProcessor()
	}
	return t
}

func (t *Translator) setEngine(name string, e engine.Engine) {
	t.name = name
	t.base = e
	t.engine = e
	if t.limiter != nil {
		t.engine = &throttledEngine{Engine: e, limiter: t.limiter}
	}
	t.logger = t.logger.With(zap.String("engine", name))
}

// EngineName returns the name of the translator's engine.
func (t *Translator) EngineName() string {
	return t.name
}

// Engine returns the translator's engine.
func (t *Translator) Engine() engine.Engine {
	return t.base
}

// Engines returns the names registered in the translator's registry.
func (t *Translator) Engines() []string {
	return t.registry.Names()
}

// InputLimit returns the maximum characters sent in one engine request.
func (t *Translator) InputLimit() int {
	if limit := t.base.InputLimit(); limit > 0 {
		return limit
	}
	return DefaultInputLimit
}

// LanguageMap returns the engine's source to targets table. The table is
// fetched once and memoised; a failed fetch is logged and yields an empty map.
func (t *Translator) LanguageMap(ctx context.Context) engine.LanguageMap {
	m, err := t.languages(ctx)
	if err != nil {
		t.logger.Warn("fetching language map failed", zap.Error(err))
		return engine.LanguageMap{}
	}
	return m
}

// RefreshLanguages drops the memoised table, including any cached copy, and
// fetches it again.
func (t *Translator) RefreshLanguages(ctx context.Context) error {
	t.mu.Lock()
	t.langs = nil
	t.sources = nil
	t.mu.Unlock()

	if t.cache != nil {
		if err := t.cache.Delete(ctx, cache.LanguagesKey(t.name)); err != nil {
			t.logger.Warn("deleting cached language map failed", zap.Error(err))
		}
	}
	_, err := t.languages(ctx)
	return err
}

func (t *Translator) languages(ctx context.Context) (engine.LanguageMap, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.langs != nil {
		return t.langs, nil
	}

	key := cache.LanguagesKey(t.name)
	if t.cache != nil {
		if raw, ok := t.cache.Get(ctx, key); ok {
			var m engine.LanguageMap
			if err := json.Unmarshal([]byte(raw), &m); err == nil {
				t.memoise(m)
				return m, nil
			}
			t.logger.Warn("ignoring unreadable cached language map", zap.String("key", key))
		}
	}

	m, err := t.engine.Languages(ctx)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = engine.LanguageMap{}
	}

	if t.cache != nil {
		if raw, err := json.Marshal(m); err == nil {
			if err := t.cache.Set(ctx, key, string(raw)); err != nil {
				t.logger.Warn("caching language map failed", zap.Error(err))
			}
		}
	}
	t.memoise(m)
	t.logger.Debug("language map loaded", zap.Int("sources", len(m)))
	return m, nil
}

// memoise must be called with t.mu held.
func (t *Translator) memoise(m engine.LanguageMap) {
	t.langs = m
	t.sources = make(map[string]string, len(m))
	for code := range m {
		t.sources[strings.ToLower(code)] = code
	}
}

// sourceCode returns the canonical spelling of a source language.
func (t *Translator) sourceCode(ctx context.Context, code string) (string, bool) {
	if _, err := t.languages(ctx); err != nil {
		return "", false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	canonical, ok := t.sources[strings.ToLower(strings.TrimSpace(code))]
	return canonical, ok
}

// SupportedLanguages returns the engine's source language codes, sorted.
func (t *Translator) SupportedLanguages(ctx context.Context) []string {
	codes := t.LanguageMap(ctx).Sources()
	sort.Strings(codes)
	return codes
}

// SupportsLanguage reports whether the engine can translate from code.
func (t *Translator) SupportsLanguage(ctx context.Context, code string) bool {
	_, ok := t.sourceCode(ctx, code)
	return ok
}

// SupportedTargetLanguages returns the codes source can be translated to.
func (t *Translator) SupportedTargetLanguages(ctx context.Context, source string) []string {
	canonical, ok := t.sourceCode(ctx, source)
	if !ok {
		return []string{}
	}
	targets := t.LanguageMap(ctx)[canonical]
	return append([]string{}, targets...)
}

// SupportsPair reports whether the engine translates source to target.
func (t *Translator) SupportsPair(ctx context.Context, source, target string) bool {
	if strings.EqualFold(strings.TrimSpace(source), strings.TrimSpace(target)) {
		return false
	}
	_, ok := findCode(t.SupportedTargetLanguages(ctx, source), target)
	return ok
}

// CheckLanguages validates a language pair and returns the codes in the
// engine's spelling. With source AutoDetect the target is not checked.
func (t *Translator) CheckLanguages(ctx context.Context, source, target string) (string, string, error) {
	source = strings.TrimSpace(source)
	target = strings.TrimSpace(target)

	if source == "" || target == "" {
		return "", "", ErrEmptyLanguage
	}
	if strings.EqualFold(source, target) {
		return "", "", ErrSameLanguage
	}
	if IsAuto(source) {
		return AutoDetect, target, nil
	}

	m, err := t.languages(ctx)
	if err != nil {
		return "", "", &TranslationError{Message: fmt.Sprintf("fetching %s languages", t.name), Cause: err}
	}

	src, ok := t.sourceCode(ctx, source)
	if !ok {
		return "", "", &UnsupportedLanguageError{Code: source, Engine: t.name}
	}
	tgt, ok := findCode(m[src], target)
	if !ok {
		return "", "", &UnsupportedLanguageError{Code: target, Engine: t.name, Target: true}
	}
	return src, tgt, nil
}

func findCode(codes []string, code string) (string, bool) {
	code = strings.TrimSpace(code)
	for _, c := range codes {
		if strings.EqualFold(c, code) {
			return c, true
		}
	}
	return "", false
}

// DetectLanguage identifies the language of text. Engines that cannot detect
// defer to a bing engine built from the same config.
func (t *Translator) DetectLanguage(ctx context.Context, text string, opts ...CallOption) (engine.Detection, error) {
	if text == "" {
		return engine.Detection{}, ErrEmptyText
	}

	detector, name, err := t.detector()
	if err != nil {
		return engine.Detection{}, err
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return engine.Detection{}, &TranslationError{Message: "rate limit wait cancelled", Cause: err}
		}
	}

	cc := newCallConfig(opts)
	d, err := detector.Detect(ctx, cc.request(text, AutoDetect, ""))
	if err != nil {
		t.logger.Warn("detecting language failed", zap.String("detector", name), zap.Error(err))
		return engine.Detection{}, &TranslationError{Message: fmt.Sprintf("%s language detection failed", name), Cause: err}
	}
	return d, nil
}

func (t *Translator) detector() (engine.Detector, string, error) {
	if d, ok := t.base.(engine.Detector); ok {
		return d, t.name, nil
	}

	e, err := t.registry.New(DefaultEngine, t.cfg)
	if err != nil {
		return nil, "", fmt.Errorf("creating %s detector: %w", DefaultEngine, err)
	}
	d, ok := e.(engine.Detector)
	if !ok {
		return nil, "", fmt.Errorf("engine %s cannot detect languages", DefaultEngine)
	}
	return d, DefaultEngine, nil
}
