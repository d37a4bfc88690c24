package engine

import (
	"context"
	"fmt"
	"sync"
)

// MockEngine is an in-memory engine for testing.
type MockEngine struct {
	Translations map[string]string // Map of source text to translation
	Langs        LanguageMap       // Returned by Languages (default: en, fr, yo, ar all paired)
	Limit        int               // Returned by InputLimit
	Failures     map[string]error  // Texts whose translation fails
	LanguagesErr error             // Returned by Languages when set
	Detection    Detection         // Returned by Detect

	mu          sync.Mutex
	callCount   int
	langCalls   int
	lastRequest *Request
	texts       []string
}

// NewMockEngine creates a new mock engine with default translations.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		Translations: map[string]string{
			"Good Morning!": "Ẹ káàrọ̀!",
			"Hello":         "Bawo",
			"Hello World":   "Bawo Agbaye",
			"Test":          "Idanwo",
			"Welcome":       "Ẹ kú àbọ̀",
		},
		Langs:     fullMesh([]string{"en", "fr", "yo", "ar", "zh-Hans"}),
		Detection: Detection{Language: "en", Score: 1.0},
	}
}

// Name returns "mock".
func (m *MockEngine) Name() string { return "mock" }

// InputLimit returns Limit.
func (m *MockEngine) InputLimit() int { return m.Limit }

// Translate returns mock translations.
func (m *MockEngine) Translate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.texts = append(m.texts, req.Text)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := m.Failures[req.Text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	// Return bracketed text for unknown translations
	return fmt.Sprintf("[%s]", req.Text), nil
}

// Detect returns Detection.
func (m *MockEngine) Detect(ctx context.Context, req Request) (Detection, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()
	return m.Detection, nil
}

// Languages returns Langs.
func (m *MockEngine) Languages(ctx context.Context) (LanguageMap, error) {
	m.mu.Lock()
	m.langCalls++
	m.mu.Unlock()

	if m.LanguagesErr != nil {
		return nil, m.LanguagesErr
	}
	return m.Langs, nil
}

// CallCount returns the number of Translate and Detect calls.
func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LanguageCalls returns the number of Languages calls.
func (m *MockEngine) LanguageCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.langCalls
}

// LastRequest returns the last request received.
func (m *MockEngine) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Texts returns every text passed to Translate, in call order.
func (m *MockEngine) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Reset resets the recorded calls.
func (m *MockEngine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.langCalls = 0
	m.lastRequest = nil
	m.texts = nil
}

// Verify MockEngine implements Engine and Detector
var (
	_ Engine   = (*MockEngine)(nil)
	_ Detector = (*MockEngine)(nil)
)
