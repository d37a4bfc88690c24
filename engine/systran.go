package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	systranEndpoint   = "https://api-translate.systran.net"
	systranInputLimit = 5000
)

// SystranConfig holds configuration for the SYSTRAN engine.
type SystranConfig struct {
	APIKey   string `mapstructure:"api_key" json:"api_key"`
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
}

// Systran translates through the SYSTRAN Translate REST API.
type Systran struct {
	cfg     SystranConfig
	timeout time.Duration
	client  *http.Client
}

// NewSystran creates a SYSTRAN engine.
func NewSystran(cfg SystranConfig, timeout time.Duration) *Systran {
	if cfg.Endpoint == "" {
		cfg.Endpoint = systranEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Systran{cfg: cfg, timeout: timeout, client: &http.Client{}}
}

// Name returns "systran".
func (s *Systran) Name() string { return "systran" }

// InputLimit returns the per-request character limit.
func (s *Systran) InputLimit() int { return systranInputLimit }

// Translate translates req.Text.
func (s *Systran) Translate(ctx context.Context, req Request) (string, error) {
	form := url.Values{}
	form.Set("input", req.Text)
	form.Set("target", req.Target)
	form.Set("format", "text")
	if req.Source != "" {
		form.Set("source", req.Source)
	}

	body, err := s.call(ctx, req, http.MethodPost, "/translation/text/translate", form)
	if err != nil {
		return "", err
	}

	var resp struct {
		Outputs []struct {
			Output string `json:"output"`
			Error  string `json:"error"`
		} `json:"outputs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Engine: s.Name(), Message: "decoding response", Cause: err}
	}

	if len(resp.Outputs) == 0 {
		return "", &Error{Engine: s.Name(), Message: "empty translation response"}
	}
	if resp.Outputs[0].Error != "" {
		return "", &Error{Engine: s.Name(), Message: resp.Outputs[0].Error}
	}
	return resp.Outputs[0].Output, nil
}

// Languages builds the table from the supported language pairs.
func (s *Systran) Languages(ctx context.Context) (LanguageMap, error) {
	body, err := s.call(ctx, Request{}, http.MethodGet, "/translation/supportedLanguages", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		LanguagePairs []struct {
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"languagePairs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Engine: s.Name(), Message: "decoding languages", Cause: err}
	}

	m := make(LanguageMap)
	for _, pair := range resp.LanguagePairs {
		m[pair.Source] = append(m[pair.Source], pair.Target)
	}
	return m, nil
}

func (s *Systran) call(ctx context.Context, req Request, method, path string, form url.Values) ([]byte, error) {
	if s.cfg.APIKey == "" {
		return nil, &Error{Engine: s.Name(), Message: "API key required", Cause: ErrMissingCredentials}
	}

	client, err := clientFor(s.client, req.Proxies)
	if err != nil {
		return nil, &Error{Engine: s.Name(), Message: "configuring proxy", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout(req, s.timeout))
	defer cancel()

	var httpReq *http.Request
	if form != nil {
		httpReq, err = http.NewRequest(method, s.cfg.Endpoint+path, strings.NewReader(form.Encode()))
		if err == nil {
			httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		httpReq, err = http.NewRequest(method, s.cfg.Endpoint+path, nil)
	}
	if err != nil {
		return nil, &Error{Engine: s.Name(), Message: "building request", Cause: err}
	}
	httpReq.Header.Set("Authorization", "Key "+s.cfg.APIKey)

	return do(ctx, client, s.Name(), httpReq)
}

// Verify Systran implements Engine
var _ Engine = (*Systran)(nil)
