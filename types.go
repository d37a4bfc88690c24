package tranzlate

import (
	"time"

	"github.com/ti-oluwa/tranzlate/engine"
	"github.com/ti-oluwa/tranzlate/processor"
)

const (
	// DefaultEngine is used when New is given an empty engine name.
	DefaultEngine = "bing"

	// AutoDetect asks the engine to detect the source language.
	AutoDetect = "auto"

	// DefaultTargetLang is the target the CLI and HTTP API fall back to.
	DefaultTargetLang = "en"

	// DefaultInputLimit applies when an engine does not declare one.
	DefaultInputLimit = 1000

	// DefaultBatchSize is the number of markup segments translated together.
	DefaultBatchSize = 50

	// DefaultConcurrency bounds in-flight engine calls within one operation.
	DefaultConcurrency = 8

	DefaultMinBatchPause = 1 * time.Second
	DefaultMaxBatchPause = 3 * time.Second
)

// Format names a markup flavour.
type Format = processor.Format

const (
	FormatHTML = processor.FormatHTML
	FormatXML  = processor.FormatXML
)

// callConfig holds per-call settings.
type callConfig struct {
	timeout    time.Duration
	proxies    map[string]string
	encoding   string
	markup     bool
	format     Format
	outputPath string
}

// CallOption adjusts a single translation call.
type CallOption func(*callConfig)

// Timeout bounds each engine request made by the call.
func Timeout(d time.Duration) CallOption {
	return func(c *callConfig) {
		c.timeout = d
	}
}

// Proxies routes engine requests through proxies keyed by URL scheme
// ("http", "https").
func Proxies(proxies map[string]string) CallOption {
	return func(c *callConfig) {
		c.proxies = proxies
	}
}

// Encoding sets the character encoding of byte content (default "utf-8").
// Names are resolved through the WHATWG encoding index.
func Encoding(name string) CallOption {
	return func(c *callConfig) {
		c.encoding = name
	}
}

// Markup treats the content as markup rather than plain text.
func Markup(markup bool) CallOption {
	return func(c *callConfig) {
		c.markup = markup
	}
}

// MarkupFormat selects the markup parser. It implies Markup(true).
func MarkupFormat(f Format) CallOption {
	return func(c *callConfig) {
		c.markup = true
		c.format = f
	}
}

// OutputPath writes a translated file to path instead of replacing the source.
func OutputPath(path string) CallOption {
	return func(c *callConfig) {
		c.outputPath = path
	}
}

func newCallConfig(opts []CallOption) callConfig {
	c := callConfig{encoding: "utf-8", format: FormatHTML}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c callConfig) request(text, source, target string) engine.Request {
	return engine.Request{
		Text:    text,
		Source:  source,
		Target:  target,
		Proxies: c.proxies,
		Timeout: c.timeout,
	}
}
