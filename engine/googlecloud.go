package engine

import (
	"context"
	"errors"
	"net/http"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

const googleCloudInputLimit = 30000

// GoogleCloudConfig holds configuration for the Cloud Translation engine.
type GoogleCloudConfig struct {
	APIKey          string `mapstructure:"api_key" json:"api_key"`
	CredentialsFile string `mapstructure:"credentials_file" json:"credentials_file"` // Service account JSON (default: application default credentials)
	Endpoint        string `mapstructure:"endpoint" json:"endpoint"`
}

// GoogleCloud translates through the Cloud Translation v2 API.
type GoogleCloud struct {
	cfg     GoogleCloudConfig
	timeout time.Duration
}

// NewGoogleCloud creates a Cloud Translation engine.
func NewGoogleCloud(cfg GoogleCloudConfig, timeout time.Duration) *GoogleCloud {
	return &GoogleCloud{cfg: cfg, timeout: timeout}
}

// Name returns "googlecloud".
func (g *GoogleCloud) Name() string { return "googlecloud" }

// InputLimit returns the per-request character limit.
func (g *GoogleCloud) InputLimit() int { return googleCloudInputLimit }

// Translate translates req.Text.
func (g *GoogleCloud) Translate(ctx context.Context, req Request) (string, error) {
	target, err := language.Parse(req.Target)
	if err != nil {
		return "", &Error{Engine: g.Name(), Message: "invalid target language", Cause: err}
	}

	var opts *translate.Options
	if req.Source != "" && req.Source != "auto" {
		source, err := language.Parse(req.Source)
		if err != nil {
			return "", &Error{Engine: g.Name(), Message: "invalid source language", Cause: err}
		}
		opts = &translate.Options{Source: source, Format: translate.Text}
	} else {
		opts = &translate.Options{Format: translate.Text}
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout(req, g.timeout))
	defer cancel()

	client, err := g.newClient(ctx, req.Proxies)
	if err != nil {
		return "", err
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, target, opts)
	if err != nil {
		return "", g.apiError("translation failed", err)
	}
	if len(translations) == 0 {
		return "", &Error{Engine: g.Name(), Message: "no translation returned"}
	}
	return translations[0].Text, nil
}

// Detect identifies the language of req.Text.
func (g *GoogleCloud) Detect(ctx context.Context, req Request) (Detection, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout(req, g.timeout))
	defer cancel()

	client, err := g.newClient(ctx, req.Proxies)
	if err != nil {
		return Detection{}, err
	}
	defer client.Close()

	detections, err := client.DetectLanguage(ctx, []string{req.Text})
	if err != nil {
		return Detection{}, g.apiError("detection failed", err)
	}
	if len(detections) == 0 || len(detections[0]) == 0 {
		return Detection{}, &Error{Engine: g.Name(), Message: "no detection returned"}
	}

	best := detections[0][0]
	for _, d := range detections[0][1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return Detection{Language: best.Language.String(), Score: best.Confidence}, nil
}

// Languages lists the supported languages; every pair is supported.
func (g *GoogleCloud) Languages(ctx context.Context) (LanguageMap, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout(Request{}, g.timeout))
	defer cancel()

	client, err := g.newClient(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	langs, err := client.SupportedLanguages(ctx, language.English)
	if err != nil {
		return nil, g.apiError("listing languages", err)
	}

	codes := make([]string, len(langs))
	for i, l := range langs {
		codes[i] = l.Tag.String()
	}
	return fullMesh(codes), nil
}

func (g *GoogleCloud) apiError(msg string, err error) *Error {
	e := &Error{Engine: g.Name(), Message: msg, Cause: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		e.StatusCode = apiErr.Code
	}
	return e
}

func (g *GoogleCloud) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if g.cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(g.cfg.APIKey))
	} else if g.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(g.cfg.CredentialsFile))
	}
	if g.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.cfg.Endpoint))
	}
	return opts
}

func (g *GoogleCloud) newClient(ctx context.Context, proxies map[string]string) (*translate.Client, error) {
	opts := g.clientOptions()

	if len(proxies) > 0 {
		proxied, err := clientFor(nil, proxies)
		if err != nil {
			return nil, &Error{Engine: g.Name(), Message: "configuring proxy", Cause: err}
		}
		// Credentials have to be layered on the proxied transport; a bare
		// WithHTTPClient would drop them.
		rt, err := htransport.NewTransport(ctx, proxied.Transport, opts...)
		if err != nil {
			return nil, &Error{Engine: g.Name(), Message: "configuring transport", Cause: err}
		}
		opts = append(opts, option.WithHTTPClient(&http.Client{Transport: rt}))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, &Error{Engine: g.Name(), Message: "failed to create client", Cause: err}
	}
	return client, nil
}

// Verify GoogleCloud implements Engine and Detector
var (
	_ Engine   = (*GoogleCloud)(nil)
	_ Detector = (*GoogleCloud)(nil)
)
