// Package lambdafn serves translation requests as an AWS Lambda function.
package lambdafn

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ti-oluwa/tranzlate"
)

// Actions understood by Handle.
const (
	ActionTranslate = "translate"
	ActionDetect    = "detect"
	ActionLanguages = "languages"
	ActionEngines   = "engines"
	ActionWarmup    = "warmup"
)

// Translators hands out a translator per engine name. An empty name selects
// the default engine.
type Translators interface {
	Translator(name string) (*tranzlate.Translator, error)
	Engines() []string
}

// Request is the event payload.
type Request struct {
	Action     string   `json:"action"` // Default "translate"
	Engine     string   `json:"engine"`
	Text       string   `json:"text"`
	Texts      []string `json:"texts"` // Translated together when set; Text is ignored
	SourceLang string   `json:"sourceLang"`
	TargetLang string   `json:"targetLang"`
	Markup     bool     `json:"markup"`
	Format     string   `json:"format"`
}

// Response is the function result. Failures are reported in Error rather
// than as a Lambda error so callers always get a body.
type Response struct {
	Engine       string   `json:"engine,omitempty"`
	Translation  string   `json:"translation,omitempty"`
	Translations []string `json:"translations,omitempty"`
	Language     string   `json:"language,omitempty"`
	Score        float64  `json:"score,omitempty"`
	Languages    []string `json:"languages,omitempty"`
	Engines      []string `json:"engines,omitempty"`
	Warm         bool     `json:"warm,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Handler handles Lambda events.
type Handler struct {
	translators Translators
	logger      *zap.Logger
	concurrency int
}

// NewHandler creates a Handler. Batches of texts are translated with at most
// concurrency calls in flight.
func NewHandler(translators Translators, logger *zap.Logger, concurrency int) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = tranzlate.DefaultConcurrency
	}
	return &Handler{translators: translators, logger: logger, concurrency: concurrency}
}

// Handle processes one event.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	if req.Action == "" {
		req.Action = ActionTranslate
	}

	switch req.Action {
	case ActionWarmup:
		return &Response{Warm: true}, nil
	case ActionEngines:
		return &Response{Engines: h.translators.Engines()}, nil
	case ActionTranslate, ActionDetect, ActionLanguages:
	default:
		return &Response{Error: fmt.Sprintf("unknown action %q", req.Action)}, nil
	}

	t, err := h.translators.Translator(req.Engine)
	if err != nil {
		return &Response{Error: err.Error()}, nil
	}
	resp := &Response{Engine: t.EngineName()}

	switch req.Action {
	case ActionDetect:
		d, err := t.DetectLanguage(ctx, req.Text)
		if err != nil {
			return h.fail(resp, req, err), nil
		}
		resp.Language, resp.Score = d.Language, d.Score

	case ActionLanguages:
		if req.SourceLang != "" {
			resp.Languages = t.SupportedTargetLanguages(ctx, req.SourceLang)
		} else {
			resp.Languages = t.SupportedLanguages(ctx)
		}

	default:
		if err := validateRequest(req); err != nil {
			resp.Error = err.Error()
			return resp, nil
		}
		if err := h.translate(ctx, t, req, resp); err != nil {
			return h.fail(resp, req, err), nil
		}
	}
	return resp, nil
}

func (h *Handler) translate(ctx context.Context, t *tranzlate.Translator, req Request, resp *Response) error {
	source := req.SourceLang
	if source == "" {
		source = tranzlate.AutoDetect
	}

	opts := []tranzlate.CallOption{tranzlate.Markup(req.Markup)}
	if req.Format != "" {
		opts = append(opts, tranzlate.MarkupFormat(tranzlate.Format(req.Format)))
	}

	if req.Texts == nil {
		out, err := t.Translate(ctx, req.Text, source, req.TargetLang, opts...)
		resp.Translation = out
		return err
	}

	// Validate once so a bad pair fails before any engine call.
	if _, _, err := t.CheckLanguages(ctx, source, req.TargetLang); err != nil {
		return err
	}

	out := make([]string, len(req.Texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, text := range req.Texts {
		i, text := i, text
		g.Go(func() error {
			translated, err := t.Translate(gctx, text, source, req.TargetLang, opts...)
			if err != nil {
				return err
			}
			out[i] = translated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	resp.Translations = out
	return nil
}

func (h *Handler) fail(resp *Response, req Request, err error) *Response {
	h.logger.Warn("request failed",
		zap.String("action", req.Action),
		zap.String("engine", resp.Engine),
		zap.Error(err),
	)
	resp.Error = err.Error()
	return resp
}

// validateRequest checks a translate request.
func validateRequest(req Request) error {
	if req.TargetLang == "" {
		return fmt.Errorf("targetLang is required")
	}
	if req.SourceLang != "" && req.SourceLang == req.TargetLang {
		return fmt.Errorf("sourceLang and targetLang must be different")
	}
	if req.Format != "" && req.Format != string(tranzlate.FormatHTML) && req.Format != string(tranzlate.FormatXML) {
		return fmt.Errorf("format must be html or xml")
	}
	return nil
}
