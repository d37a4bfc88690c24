package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const openAIInputLimit = 4000

// OpenAIConfig holds configuration for the OpenAI engine.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`             // Model to use (default: "gpt-4o-mini")
	Temperature float32       `mapstructure:"temperature" json:"temperature"` // Temperature for generation (default: 0.3)
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`       // Custom base URL (optional)
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

// OpenAI translates with a chat completion model in JSON mode.
type OpenAI struct {
	cfg         openai.ClientConfig
	apiKey      string
	model       string
	temperature float32
	timeout     time.Duration
}

// NewOpenAI creates an OpenAI engine.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAI{
		cfg:         config,
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
		timeout:     cfg.Timeout,
	}
}

// Name returns "openai".
func (p *OpenAI) Name() string { return "openai" }

// InputLimit returns the per-request character limit.
func (p *OpenAI) InputLimit() int { return openAIInputLimit }

// Translate translates req.Text.
func (p *OpenAI) Translate(ctx context.Context, req Request) (string, error) {
	content, err := p.complete(ctx, req, p.buildTranslatePrompt(req), req.Text)
	if err != nil {
		return "", err
	}

	var out struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil || out.Translation == "" {
		return "", &Error{Engine: p.Name(), Message: "invalid response format", Cause: err}
	}
	return out.Translation, nil
}

// Detect identifies the language of req.Text.
func (p *OpenAI) Detect(ctx context.Context, req Request) (Detection, error) {
	prompt := `Identify the language of the text in the user message.
Return a valid JSON object: { "language": "<ISO 639-1 code>", "score": <confidence between 0 and 1> }
Do NOT wrap in Markdown code blocks.`

	content, err := p.complete(ctx, req, prompt, req.Text)
	if err != nil {
		return Detection{}, err
	}

	var d Detection
	if err := json.Unmarshal([]byte(content), &d); err != nil || d.Language == "" {
		return Detection{}, &Error{Engine: p.Name(), Message: "invalid response format", Cause: err}
	}
	d.Language = strings.ToLower(d.Language)
	return d, nil
}

// Languages returns the names table; every pair is supported.
func (p *OpenAI) Languages(ctx context.Context) (LanguageMap, error) {
	return fullMesh(llmLanguages()), nil
}

func (p *OpenAI) complete(ctx context.Context, req Request, system, user string) (string, error) {
	if p.apiKey == "" {
		return "", &Error{Engine: p.Name(), Message: "API key required", Cause: ErrMissingCredentials}
	}

	config := p.cfg
	if len(req.Proxies) > 0 {
		proxied, err := clientFor(nil, req.Proxies)
		if err != nil {
			return "", &Error{Engine: p.Name(), Message: "configuring proxy", Cause: err}
		}
		config.HTTPClient = proxied
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout(req, p.timeout))
	defer cancel()

	resp, err := openai.NewClientWithConfig(config).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e := &Error{Engine: p.Name(), Message: "API call failed", Cause: err}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			e.StatusCode = apiErr.HTTPStatusCode
		}
		return "", e
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Engine: p.Name(), Message: "no response from model"}
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAI) buildTranslatePrompt(req Request) string {
	targetName := GetLanguageName(req.Target)

	source := "Detect the source language yourself."
	if req.Source != "" && req.Source != "auto" {
		source = fmt.Sprintf("The source language is %s.", GetLanguageName(req.Source))
	}

	return fmt.Sprintf(`# Role
You are an expert native translator. You translate content to %s with the fluency of a native speaker.

# Task
Translate the text in the user message into %s. %s

# Rules
- Return only the translation, never commentary.
- Do NOT translate URLs, email addresses, or placeholders (e.g., {{name}}, {count}, %%s, $1).
- Preserve meaningful whitespace and line breaks.

# Format
Return a valid JSON object with a single key "translation" holding the translated string.
Example: { "translation": "translated text" }
- Do NOT wrap in Markdown code blocks.`, targetName, targetName, source)
}

// Verify OpenAI implements Engine and Detector
var (
	_ Engine   = (*OpenAI)(nil)
	_ Detector = (*OpenAI)(nil)
)
