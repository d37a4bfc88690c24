package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const (
	myMemoryEndpoint   = "https://api.mymemory.translated.net/get"
	myMemoryInputLimit = 500
)

// MyMemoryConfig holds configuration for the MyMemory engine.
type MyMemoryConfig struct {
	Email    string `mapstructure:"email" json:"email"` // Raises the free daily quota
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
}

// MyMemory translates through the MyMemory translation memory API.
type MyMemory struct {
	cfg     MyMemoryConfig
	timeout time.Duration
	client  *http.Client
}

// NewMyMemory creates a MyMemory engine.
func NewMyMemory(cfg MyMemoryConfig, timeout time.Duration) *MyMemory {
	if cfg.Endpoint == "" {
		cfg.Endpoint = myMemoryEndpoint
	}
	return &MyMemory{cfg: cfg, timeout: timeout, client: &http.Client{}}
}

// Name returns "mymemory".
func (m *MyMemory) Name() string { return "mymemory" }

// InputLimit returns the per-request character limit.
func (m *MyMemory) InputLimit() int { return myMemoryInputLimit }

// Translate translates req.Text.
func (m *MyMemory) Translate(ctx context.Context, req Request) (string, error) {
	client, err := clientFor(m.client, req.Proxies)
	if err != nil {
		return "", &Error{Engine: m.Name(), Message: "configuring proxy", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout(req, m.timeout))
	defer cancel()

	source := req.Source
	if source == "" || source == "auto" {
		source = "autodetect"
	}

	params := url.Values{}
	params.Set("q", req.Text)
	params.Set("langpair", fmt.Sprintf("%s|%s", source, req.Target))
	if m.cfg.Email != "" {
		params.Set("de", m.cfg.Email)
	}

	httpReq, err := http.NewRequest(http.MethodGet, m.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", &Error{Engine: m.Name(), Message: "building request", Cause: err}
	}

	body, err := do(ctx, client, m.Name(), httpReq)
	if err != nil {
		return "", err
	}

	// responseStatus comes back as a number or a numeric string.
	status := gjson.GetBytes(body, "responseStatus").Int()
	if status != http.StatusOK {
		return "", &Error{
			Engine:     m.Name(),
			Message:    gjson.GetBytes(body, "responseDetails").String(),
			StatusCode: int(status),
		}
	}

	text := gjson.GetBytes(body, "responseData.translatedText").String()
	if text == "" {
		return "", &Error{Engine: m.Name(), Message: "no translation returned"}
	}
	return text, nil
}

// Languages returns the static table; every pair is supported.
func (m *MyMemory) Languages(ctx context.Context) (LanguageMap, error) {
	return fullMesh(myMemoryLanguages), nil
}

// Verify MyMemory implements Engine
var _ Engine = (*MyMemory)(nil)
