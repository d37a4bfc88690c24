package tranzlate_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ti-oluwa/tranzlate"
	"github.com/ti-oluwa/tranzlate/cache"
	"github.com/ti-oluwa/tranzlate/engine"
)

// Integration tests running the bing engine against a local Translator API.

var yoruba = map[string]string{
	"Hello":         "Bawo",
	"Welcome":       "Ẹ kú àbọ̀",
	"Good Morning!": "Ẹ káàrọ̀!",
}

type bingServer struct {
	*httptest.Server
	translations atomic.Int32
	languages    atomic.Int32
}

func newBingServer(t *testing.T) *bingServer {
	t.Helper()
	s := &bingServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/languages", func(w http.ResponseWriter, r *http.Request) {
		s.languages.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"translation":{"en":{"name":"English"},"yo":{"name":"Yoruba"},"ar":{"name":"Arabic"}}}`)
	})
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		s.translations.Add(1)
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			http.Error(w, `{"error":{"code":401000,"message":"invalid key"}}`, http.StatusUnauthorized)
			return
		}

		var body []struct{ Text string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body) != 1 {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		out, ok := yoruba[body[0].Text]
		if !ok {
			out = strings.ToUpper(body[0].Text)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"translations": []map[string]string{{"text": out, "to": r.URL.Query().Get("to")}}},
		})
	})
	mux.HandleFunc("/detect", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"language":"yo","score":0.98,"isTranslationSupported":true}]`)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func newBingTranslator(t *testing.T, srv *bingServer, key string, opts ...tranzlate.Option) *tranzlate.Translator {
	t.Helper()
	cfg := engine.Config{Bing: engine.BingConfig{Key: key, Endpoint: srv.URL}}
	opts = append([]tranzlate.Option{
		tranzlate.WithEngineConfig(cfg),
		tranzlate.WithBatchPause(0, 0),
	}, opts...)

	tr, err := tranzlate.New("bing", opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tr
}

func TestIntegration_TextTranslation(t *testing.T) {
	srv := newBingServer(t)
	tr := newBingTranslator(t, srv, "test-key")

	got, err := tr.TranslateText(context.Background(), "Good Morning!", "en", "yo")
	if err != nil {
		t.Fatalf("TranslateText failed: %v", err)
	}
	if got != "Ẹ káàrọ̀!" {
		t.Errorf("TranslateText = %q", got)
	}
}

func TestIntegration_DocumentTranslation(t *testing.T) {
	srv := newBingServer(t)
	tr := newBingTranslator(t, srv, "test-key")

	html := `<!DOCTYPE html>
<html>
<head><title>Welcome</title></head>
<body>
  <nav><a href="/">Hello</a></nav>
  <p>Hello</p>
  <script>console.log("Hello")</script>
</body>
</html>`

	got, err := tr.TranslateMarkup(context.Background(), html, "en", "yo")
	if err != nil {
		t.Fatalf("TranslateMarkup failed: %v", err)
	}

	for _, want := range []string{`<html lang="yo" dir="ltr">`, "<title>Ẹ kú àbọ̀</title>", `<a href="/">Bawo</a>`, "<p>Bawo</p>", `console.log("Hello")`} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in result:\n%s", want, got)
		}
	}
	if n := srv.translations.Load(); n != 2 {
		t.Errorf("Expected 2 distinct texts sent, got %d", n)
	}
}

func TestIntegration_LanguageMapCachedAcrossTranslators(t *testing.T) {
	srv := newBingServer(t)
	shared := cache.NewMemory(0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tr := newBingTranslator(t, srv, "test-key", tranzlate.WithCache(shared))
		if !tr.SupportsPair(ctx, "en", "yo") {
			t.Fatal("en -> yo should be supported")
		}
	}
	if n := srv.languages.Load(); n != 1 {
		t.Errorf("languages fetched %d times, want 1", n)
	}
}

func TestIntegration_UnsupportedTarget(t *testing.T) {
	srv := newBingServer(t)
	tr := newBingTranslator(t, srv, "test-key")

	_, err := tr.TranslateText(context.Background(), "Hello", "en", "de")
	var ule *tranzlate.UnsupportedLanguageError
	if !errors.As(err, &ule) {
		t.Fatalf("Expected UnsupportedLanguageError, got %v", err)
	}
	if err.Error() != "Translation to 'de' is not supported by bing" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if srv.translations.Load() != 0 {
		t.Error("nothing should be sent for an unsupported pair")
	}
}

func TestIntegration_EngineErrorSurfaced(t *testing.T) {
	srv := newBingServer(t)
	tr := newBingTranslator(t, srv, "wrong-key")

	_, err := tr.TranslateText(context.Background(), "Hello", "auto", "yo")

	var engErr *engine.Error
	if !errors.As(err, &engErr) {
		t.Fatalf("Expected engine.Error, got %v", err)
	}
	if engErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", engErr.StatusCode)
	}
}

func TestIntegration_FileTranslation(t *testing.T) {
	srv := newBingServer(t)
	tr := newBingTranslator(t, srv, "test-key")

	path := filepath.Join(t.TempDir(), "page.htm")
	if err := os.WriteFile(path, []byte(`<h1>Welcome</h1>`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.TranslateFile(context.Background(), path, "en", "yo"); err != nil {
		t.Fatalf("TranslateFile failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != `<h1>Ẹ kú àbọ̀</h1>` {
		t.Errorf("file content = %q", got)
	}
}

func TestIntegration_Detect(t *testing.T) {
	srv := newBingServer(t)
	tr := newBingTranslator(t, srv, "test-key")

	d, err := tr.DetectLanguage(context.Background(), "Ẹ káàrọ̀")
	if err != nil {
		t.Fatalf("DetectLanguage failed: %v", err)
	}
	if d.Language != "yo" || d.Score != 0.98 {
		t.Errorf("Detection = %+v", d)
	}
}
