package engine

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds an engine from the shared config.
type Factory func(cfg Config) (Engine, error)

// Registry maps engine names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry holds every built-in engine.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register("bing", func(cfg Config) (Engine, error) { return NewBing(cfg.Bing, cfg.Timeout), nil })
	r.Register("google", func(cfg Config) (Engine, error) { return NewGoogle(cfg.Google, cfg.Timeout), nil })
	r.Register("googlecloud", func(cfg Config) (Engine, error) { return NewGoogleCloud(cfg.GoogleCloud, cfg.Timeout), nil })
	r.Register("mymemory", func(cfg Config) (Engine, error) { return NewMyMemory(cfg.MyMemory, cfg.Timeout), nil })
	r.Register("systran", func(cfg Config) (Engine, error) { return NewSystran(cfg.Systran, cfg.Timeout), nil })
	r.Register("openai", func(cfg Config) (Engine, error) {
		oc := cfg.OpenAI
		if oc.Timeout == 0 {
			oc.Timeout = cfg.Timeout
		}
		return NewOpenAI(oc), nil
	})
	return r
}()

// Register adds or replaces a factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered engine names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named engine.
func (r *Registry) New(name string, cfg Config) (Engine, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown engine %q", name)
	}
	return f(cfg)
}
