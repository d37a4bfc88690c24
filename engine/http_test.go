package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClientFor_NoProxies(t *testing.T) {
	base := &http.Client{}

	got, err := clientFor(base, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != base {
		t.Error("Expected the base client when no proxies are set")
	}
}

func TestClientFor_Proxies(t *testing.T) {
	got, err := clientFor(&http.Client{}, map[string]string{"HTTPS": "http://proxy.local:3128"})
	if err != nil {
		t.Fatal(err)
	}

	tr, ok := got.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Expected *http.Transport, got %T", got.Transport)
	}

	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	u, err := tr.Proxy(req)
	if err != nil || u == nil || u.Host != "proxy.local:3128" {
		t.Errorf("https proxy = %v, %v", u, err)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://example.com", nil)
	if u, _ := tr.Proxy(req); u != nil {
		t.Errorf("http requests should not be proxied, got %v", u)
	}
}

func TestClientFor_ReusesProxiedClient(t *testing.T) {
	base := &http.Client{}

	first, err := clientFor(base, map[string]string{"http": "http://a.local:1", "https": "http://b.local:2"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := clientFor(base, map[string]string{"HTTPS": "http://b.local:2", "http": "http://a.local:1"})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("the same proxies should reuse one client")
	}

	other, err := clientFor(base, map[string]string{"http": "http://c.local:3"})
	if err != nil {
		t.Fatal(err)
	}
	if other == first {
		t.Error("different proxies should not share a client")
	}
}

func TestClientFor_InvalidProxy(t *testing.T) {
	if _, err := clientFor(nil, map[string]string{"http": "://bad"}); err == nil {
		t.Error("Expected error for invalid proxy URL")
	}
}

func TestDo(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.UserAgent()
		switch r.URL.Path {
		case "/ok":
			io.WriteString(w, "fine")
		case "/multibyte":
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, "x"+strings.Repeat("é", 600))
		case "/long":
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, strings.Repeat("x", 2000))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/ok", nil)
	body, err := do(ctx, srv.Client(), "test", req)
	if err != nil || string(body) != "fine" {
		t.Fatalf("do = %q, %v", body, err)
	}
	if agent != UserAgent {
		t.Errorf("User-Agent = %q, want %q", agent, UserAgent)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/long", nil)
	_, err = do(ctx, srv.Client(), "test", req)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if len(e.Message) != maxErrorBody || e.StatusCode != http.StatusBadGateway {
		t.Errorf("message length %d, status %d", len(e.Message), e.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/multibyte", nil)
	_, err = do(ctx, srv.Client(), "test", req)
	if !errors.As(err, &e) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if !utf8.ValidString(e.Message) || len(e.Message) != maxErrorBody-1 {
		t.Errorf("truncation should stop at a rune boundary, got %d bytes", len(e.Message))
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/missing", nil)
	_, err = do(ctx, srv.Client(), "test", req)
	if !errors.As(err, &e) || e.Message != "Not Found" {
		t.Errorf("Expected status text for empty body, got %v", err)
	}
}

func TestDo_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := do(ctx, srv.Client(), "test", req)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Engine: "bing", Message: "boom"}, "bing: boom"},
		{&Error{Engine: "bing", Message: "boom", StatusCode: 500}, "bing: boom (status 500)"},
		{&Error{Engine: "bing", Message: "boom", Cause: ErrMissingCredentials}, "bing: boom: missing credentials"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
