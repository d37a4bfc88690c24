package lambdafn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ti-oluwa/tranzlate/cache"
	"github.com/ti-oluwa/tranzlate/config"
	"github.com/ti-oluwa/tranzlate/engine"
)

func newTestHandler(t *testing.T) (*Handler, *engine.MockEngine) {
	t.Helper()

	mock := engine.NewMockEngine()
	reg := engine.NewRegistry()
	reg.Register("mock", func(engine.Config) (engine.Engine, error) { return mock, nil })

	f := config.NewFactory(&config.Config{Engine: "mock"}, cache.NewMemory(0), zap.NewNop(), reg)
	return NewHandler(f, zap.NewNop(), 2), mock
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name        string
		request     Request
		expectError bool
		errorMsg    string
	}{
		{
			name:    "valid request",
			request: Request{Text: "Hello", SourceLang: "en", TargetLang: "fr"},
		},
		{
			name:    "auto source",
			request: Request{Text: "Hello", TargetLang: "fr"},
		},
		{
			name:        "missing targetLang",
			request:     Request{Text: "Hello", SourceLang: "en"},
			expectError: true,
			errorMsg:    "targetLang is required",
		},
		{
			name:        "same source and target",
			request:     Request{Text: "Hello", SourceLang: "es", TargetLang: "es"},
			expectError: true,
			errorMsg:    "sourceLang and targetLang must be different",
		},
		{
			name:        "bad format",
			request:     Request{Text: "Hello", TargetLang: "fr", Format: "json"},
			expectError: true,
			errorMsg:    "format must be html or xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.request)
			if tt.expectError {
				assert.EqualError(t, err, tt.errorMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHandle_Translate(t *testing.T) {
	h, _ := newTestHandler(t)

	resp, err := h.Handle(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "yo"})
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "mock", resp.Engine)
	assert.Equal(t, "Bawo", resp.Translation)
}

func TestHandle_TranslateBatch(t *testing.T) {
	h, _ := newTestHandler(t)

	resp, err := h.Handle(context.Background(), Request{
		Texts:      []string{"Hello", "Test", "Welcome", ""},
		SourceLang: "en",
		TargetLang: "yo",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Error)
	assert.Equal(t, []string{"Bawo", "Idanwo", "Ẹ kú àbọ̀", ""}, resp.Translations)
}

func TestHandle_TranslateBatch_UnsupportedPair(t *testing.T) {
	h, mock := newTestHandler(t)

	resp, err := h.Handle(context.Background(), Request{Texts: []string{"Hello"}, SourceLang: "en", TargetLang: "de"})
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "Translation to 'de' is not supported")
	assert.Zero(t, mock.CallCount())
}

func TestHandle_TranslateMarkup(t *testing.T) {
	h, _ := newTestHandler(t)

	resp, err := h.Handle(context.Background(), Request{
		Text:       "<doc><msg>Hello</msg></doc>",
		SourceLang: "en",
		TargetLang: "yo",
		Format:     "xml",
	})
	require.NoError(t, err)
	assert.Equal(t, "<doc><msg>Bawo</msg></doc>", resp.Translation)
}

func TestHandle_EngineFailure(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.Failures = map[string]error{"Hello": errors.New("quota exceeded")}

	resp, err := h.Handle(context.Background(), Request{Text: "Hello", SourceLang: "en", TargetLang: "fr"})
	require.NoError(t, err, "failures are reported in the response")
	assert.Contains(t, resp.Error, "quota exceeded")
}

func TestHandle_Detect(t *testing.T) {
	h, _ := newTestHandler(t)

	resp, err := h.Handle(context.Background(), Request{Action: ActionDetect, Text: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, 1.0, resp.Score)

	resp, _ = h.Handle(context.Background(), Request{Action: ActionDetect})
	assert.NotEmpty(t, resp.Error)
}

func TestHandle_Languages(t *testing.T) {
	h, _ := newTestHandler(t)

	resp, err := h.Handle(context.Background(), Request{Action: ActionLanguages})
	require.NoError(t, err)
	assert.Equal(t, []string{"ar", "en", "fr", "yo", "zh-Hans"}, resp.Languages)

	resp, err = h.Handle(context.Background(), Request{Action: ActionLanguages, SourceLang: "en"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fr", "yo", "ar", "zh-Hans"}, resp.Languages)
}

func TestHandle_MiscActions(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	resp, _ := h.Handle(ctx, Request{Action: ActionWarmup})
	assert.True(t, resp.Warm)

	resp, _ = h.Handle(ctx, Request{Action: ActionEngines})
	assert.Equal(t, []string{"mock"}, resp.Engines)

	resp, _ = h.Handle(ctx, Request{Action: "explode"})
	assert.Equal(t, `unknown action "explode"`, resp.Error)

	resp, _ = h.Handle(ctx, Request{Engine: "nope", Text: "Hello", TargetLang: "fr"})
	assert.Contains(t, resp.Error, "invalid translation engine")
}
