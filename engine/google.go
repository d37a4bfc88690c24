package engine

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	googleEndpoint   = "https://translate.googleapis.com/translate_a/single"
	googleInputLimit = 5000
)

// GoogleConfig holds configuration for the public Google engine.
type GoogleConfig struct {
	Endpoint string `mapstructure:"endpoint" json:"endpoint"` // Custom endpoint (default: translate.googleapis.com)
}

// Google translates through the keyless web endpoint used by the Google
// Translate widget.
type Google struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewGoogle creates a Google engine.
func NewGoogle(cfg GoogleConfig, timeout time.Duration) *Google {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = googleEndpoint
	}
	return &Google{endpoint: endpoint, timeout: timeout, client: &http.Client{}}
}

// Name returns "google".
func (g *Google) Name() string { return "google" }

// InputLimit returns the per-request character limit.
func (g *Google) InputLimit() int { return googleInputLimit }

// Translate translates req.Text.
func (g *Google) Translate(ctx context.Context, req Request) (string, error) {
	body, err := g.query(ctx, req, req.Target)
	if err != nil {
		return "", err
	}

	// The first element holds one [translated, original, ...] row per sentence.
	var sb strings.Builder
	gjson.GetBytes(body, "0").ForEach(func(_, row gjson.Result) bool {
		sb.WriteString(row.Get("0").String())
		return true
	})

	if sb.Len() == 0 {
		return "", &Error{Engine: g.Name(), Message: "no translation returned"}
	}
	return sb.String(), nil
}

// Detect identifies the language of req.Text from the source reported by an
// auto-detected translation.
func (g *Google) Detect(ctx context.Context, req Request) (Detection, error) {
	req.Source = "auto"
	target := req.Target
	if target == "" {
		target = "en"
	}

	body, err := g.query(ctx, req, target)
	if err != nil {
		return Detection{}, err
	}

	lang := gjson.GetBytes(body, "2").String()
	if lang == "" {
		return Detection{}, &Error{Engine: g.Name(), Message: "no detection returned"}
	}

	score := 1.0
	if conf := gjson.GetBytes(body, "6"); conf.Type == gjson.Number && conf.Float() > 0 {
		score = conf.Float()
	}
	return Detection{Language: lang, Score: score}, nil
}

// Languages returns the static table; every pair is supported.
func (g *Google) Languages(ctx context.Context) (LanguageMap, error) {
	return fullMesh(googleLanguages), nil
}

func (g *Google) query(ctx context.Context, req Request, target string) ([]byte, error) {
	client, err := clientFor(g.client, req.Proxies)
	if err != nil {
		return nil, &Error{Engine: g.Name(), Message: "configuring proxy", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout(req, g.timeout))
	defer cancel()

	source := req.Source
	if source == "" {
		source = "auto"
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")

	form := url.Values{}
	form.Set("q", req.Text)

	httpReq, err := http.NewRequest(http.MethodPost, g.endpoint+"?"+params.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &Error{Engine: g.Name(), Message: "building request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	body, err := do(ctx, client, g.Name(), httpReq)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, &Error{Engine: g.Name(), Message: "invalid response format"}
	}
	return body, nil
}

// Verify Google implements Engine and Detector
var (
	_ Engine   = (*Google)(nil)
	_ Detector = (*Google)(nil)
)
