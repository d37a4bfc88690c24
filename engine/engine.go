// Package engine defines the translation backend interface and its implementations.
package engine

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single engine request when neither the request nor the
// config set one.
const DefaultTimeout = 30 * time.Second

// Engine is the interface for translation backends.
type Engine interface {
	// Name returns the registry name of the engine.
	Name() string

	// InputLimit returns the maximum number of characters accepted per request.
	// Zero means the engine does not declare one.
	InputLimit() int

	// Translate translates a single text.
	Translate(ctx context.Context, req Request) (string, error)

	// Languages returns the engine's source → targets table.
	Languages(ctx context.Context) (LanguageMap, error)
}

// Detector is implemented by engines that can identify the language of a text.
type Detector interface {
	Detect(ctx context.Context, req Request) (Detection, error)
}

// Request contains the parameters for a translation request.
type Request struct {
	Text    string
	Source  string            // Source language code, "auto" to detect
	Target  string            // Target language code
	Proxies map[string]string // URL scheme ("http", "https") to proxy URL
	Timeout time.Duration     // Per-request timeout (0 = engine default)
}

// Detection is the result of language identification.
type Detection struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// LanguageMap maps a source language code to the codes it can be translated to.
type LanguageMap map[string][]string

// Sources returns the source codes in the map.
func (m LanguageMap) Sources() []string {
	codes := make([]string, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	return codes
}

// fullMesh builds a map where every code can be translated to every other code.
func fullMesh(codes []string) LanguageMap {
	m := make(LanguageMap, len(codes))
	for _, src := range codes {
		targets := make([]string, 0, len(codes)-1)
		for _, tgt := range codes {
			if tgt != src {
				targets = append(targets, tgt)
			}
		}
		m[src] = targets
	}
	return m
}

// Config holds credentials and endpoints for every engine.
type Config struct {
	Timeout     time.Duration     `mapstructure:"timeout" json:"timeout"`
	Bing        BingConfig        `mapstructure:"bing" json:"bing"`
	Google      GoogleConfig      `mapstructure:"google" json:"google"`
	GoogleCloud GoogleCloudConfig `mapstructure:"googlecloud" json:"googlecloud"`
	MyMemory    MyMemoryConfig    `mapstructure:"mymemory" json:"mymemory"`
	Systran     SystranConfig     `mapstructure:"systran" json:"systran"`
	OpenAI      OpenAIConfig      `mapstructure:"openai" json:"openai"`
}

// requestTimeout picks the timeout for a request.
func requestTimeout(req Request, fallback time.Duration) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTimeout
}
