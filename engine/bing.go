package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	bingEndpoint   = "https://api.cognitive.microsofttranslator.com"
	bingAPIVersion = "3.0"
	bingInputLimit = 1000
)

// BingConfig holds configuration for the Microsoft Translator engine.
type BingConfig struct {
	Key      string `mapstructure:"key" json:"key"`           // Subscription key
	Region   string `mapstructure:"region" json:"region"`     // Resource region (optional for global resources)
	Endpoint string `mapstructure:"endpoint" json:"endpoint"` // Custom endpoint (default: public API)
}

// Bing translates through the Microsoft Translator v3 REST API.
type Bing struct {
	cfg     BingConfig
	timeout time.Duration
	client  *http.Client
}

// NewBing creates a Bing engine.
func NewBing(cfg BingConfig, timeout time.Duration) *Bing {
	if cfg.Endpoint == "" {
		cfg.Endpoint = bingEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Bing{cfg: cfg, timeout: timeout, client: &http.Client{}}
}

// Name returns "bing".
func (b *Bing) Name() string { return "bing" }

// InputLimit returns the per-request character limit.
func (b *Bing) InputLimit() int { return bingInputLimit }

type bingText struct {
	Text string `json:"Text"`
}

type bingTranslateResult struct {
	DetectedLanguage *Detection `json:"detectedLanguage,omitempty"`
	Translations     []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate translates req.Text.
func (b *Bing) Translate(ctx context.Context, req Request) (string, error) {
	params := url.Values{}
	params.Set("to", req.Target)
	if req.Source != "" && req.Source != "auto" {
		params.Set("from", req.Source)
	}

	var results []bingTranslateResult
	if err := b.post(ctx, req, "/translate", params, &results); err != nil {
		return "", err
	}

	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", &Error{Engine: b.Name(), Message: "no translation returned"}
	}
	return results[0].Translations[0].Text, nil
}

// Detect identifies the language of req.Text.
func (b *Bing) Detect(ctx context.Context, req Request) (Detection, error) {
	var results []Detection
	if err := b.post(ctx, req, "/detect", url.Values{}, &results); err != nil {
		return Detection{}, err
	}

	if len(results) == 0 {
		return Detection{}, &Error{Engine: b.Name(), Message: "no detection returned"}
	}
	return results[0], nil
}

// Languages fetches the translation scope of the languages endpoint.
// Every listed language can be translated to every other one.
func (b *Bing) Languages(ctx context.Context) (LanguageMap, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout(Request{}, b.timeout))
	defer cancel()

	u := b.cfg.Endpoint + "/languages?api-version=" + bingAPIVersion + "&scope=translation"
	httpReq, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Engine: b.Name(), Message: "building request", Cause: err}
	}

	body, err := do(ctx, b.client, b.Name(), httpReq)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Translation map[string]json.RawMessage `json:"translation"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Engine: b.Name(), Message: "decoding languages", Cause: err}
	}

	codes := make([]string, 0, len(resp.Translation))
	for code := range resp.Translation {
		codes = append(codes, code)
	}
	return fullMesh(codes), nil
}

func (b *Bing) post(ctx context.Context, req Request, path string, params url.Values, out interface{}) error {
	if b.cfg.Key == "" {
		return &Error{Engine: b.Name(), Message: "subscription key required", Cause: ErrMissingCredentials}
	}

	client, err := clientFor(b.client, req.Proxies)
	if err != nil {
		return &Error{Engine: b.Name(), Message: "configuring proxy", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout(req, b.timeout))
	defer cancel()

	payload, err := json.Marshal([]bingText{{Text: req.Text}})
	if err != nil {
		return &Error{Engine: b.Name(), Message: "encoding request", Cause: err}
	}

	params.Set("api-version", bingAPIVersion)
	httpReq, err := http.NewRequest(http.MethodPost, b.cfg.Endpoint+path+"?"+params.Encode(), bytes.NewReader(payload))
	if err != nil {
		return &Error{Engine: b.Name(), Message: "building request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", b.cfg.Key)
	if b.cfg.Region != "" {
		httpReq.Header.Set("Ocp-Apim-Subscription-Region", b.cfg.Region)
	}

	body, err := do(ctx, client, b.Name(), httpReq)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Engine: b.Name(), Message: "decoding response", Cause: err}
	}
	return nil
}

// Verify Bing implements Engine and Detector
var (
	_ Engine   = (*Bing)(nil)
	_ Detector = (*Bing)(nil)
)
