package engine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBing_Translate(t *testing.T) {
	var gotQuery, gotKey, gotRegion, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("Ocp-Apim-Subscription-Key")
		gotRegion = r.Header.Get("Ocp-Apim-Subscription-Region")

		var body []bingText
		json.NewDecoder(r.Body).Decode(&body)
		if len(body) == 1 {
			gotText = body[0].Text
		}
		io.WriteString(w, `[{"translations":[{"text":"Bawo","to":"yo"}]}]`)
	}))
	defer srv.Close()

	b := NewBing(BingConfig{Key: "k", Region: "westeurope", Endpoint: srv.URL + "/"}, 0)
	got, err := b.Translate(context.Background(), Request{Text: "Hello", Source: "en", Target: "yo"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Bawo" {
		t.Errorf("Translate = %q, want Bawo", got)
	}
	if gotQuery != "api-version=3.0&from=en&to=yo" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotKey != "k" || gotRegion != "westeurope" {
		t.Errorf("headers = %q / %q", gotKey, gotRegion)
	}
	if gotText != "Hello" {
		t.Errorf("body text = %q", gotText)
	}
}

func TestBing_Translate_AutoOmitsFrom(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `[{"detectedLanguage":{"language":"en","score":1.0},"translations":[{"text":"Bonjour","to":"fr"}]}]`)
	}))
	defer srv.Close()

	b := NewBing(BingConfig{Key: "k", Endpoint: srv.URL}, 0)
	if _, err := b.Translate(context.Background(), Request{Text: "Hello", Source: "auto", Target: "fr"}); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if gotQuery != "api-version=3.0&to=fr" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestBing_MissingKey(t *testing.T) {
	b := NewBing(BingConfig{}, 0)

	_, err := b.Translate(context.Background(), Request{Text: "Hello", Target: "fr"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Expected ErrMissingCredentials, got %v", err)
	}
}

func TestBing_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429001,"message":"too many requests"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	b := NewBing(BingConfig{Key: "k", Endpoint: srv.URL}, 0)
	_, err := b.Translate(context.Background(), Request{Text: "Hello", Target: "fr"})

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if e.StatusCode != http.StatusTooManyRequests || e.Engine != "bing" {
		t.Errorf("unexpected error %+v", e)
	}
}

func TestBing_Detect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `[{"language":"yo","score":0.92,"isTranslationSupported":true}]`)
	}))
	defer srv.Close()

	b := NewBing(BingConfig{Key: "k", Endpoint: srv.URL}, 0)
	d, err := b.Detect(context.Background(), Request{Text: "Ẹ káàrọ̀"})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if d.Language != "yo" || d.Score != 0.92 {
		t.Errorf("Detection = %+v", d)
	}
}

func TestBing_Languages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("scope") != "translation" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		io.WriteString(w, `{"translation":{"en":{"name":"English"},"yo":{"name":"Yoruba"},"fr":{"name":"French"}}}`)
	}))
	defer srv.Close()

	b := NewBing(BingConfig{Endpoint: srv.URL}, 0)
	m, err := b.Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages failed: %v", err)
	}
	if len(m) != 3 || len(m["en"]) != 2 {
		t.Errorf("unexpected map %v", m)
	}
	for _, tgt := range m["yo"] {
		if tgt == "yo" {
			t.Error("a language should not target itself")
		}
	}
}
