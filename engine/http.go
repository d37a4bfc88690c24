package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// maxErrorBody caps how much of an error response is kept in the error message.
const maxErrorBody = 512

// UserAgent is sent with every request made by the HTTP engines.
var UserAgent = "tranzlate"

// proxyClients holds one client per base client and proxy set, so proxied
// requests share a transport and its idle connections.
var proxyClients sync.Map // proxyKey -> *http.Client

type proxyKey struct {
	base    *http.Client
	proxies string
}

func newProxyKey(base *http.Client, proxies map[string]string) proxyKey {
	pairs := make([]string, 0, len(proxies))
	for scheme, raw := range proxies {
		pairs = append(pairs, strings.ToLower(scheme)+"="+raw)
	}
	sort.Strings(pairs)
	return proxyKey{base: base, proxies: strings.Join(pairs, "\n")}
}

// clientFor returns base, or a copy of base whose transport routes through the
// request's proxies. Copies are reused for the same base and proxies.
func clientFor(base *http.Client, proxies map[string]string) (*http.Client, error) {
	if base == nil {
		base = http.DefaultClient
	}
	if len(proxies) == 0 {
		return base, nil
	}

	key := newProxyKey(base, proxies)
	if c, ok := proxyClients.Load(key); ok {
		return c.(*http.Client), nil
	}
	c, err := newProxyClient(base, proxies)
	if err != nil {
		return nil, err
	}
	actual, _ := proxyClients.LoadOrStore(key, c)
	return actual.(*http.Client), nil
}

func newProxyClient(base *http.Client, proxies map[string]string) (*http.Client, error) {

	parsed := make(map[string]*url.URL, len(proxies))
	for scheme, raw := range proxies {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s proxy %q: %w", scheme, raw, err)
		}
		parsed[strings.ToLower(scheme)] = u
	}

	var tr *http.Transport
	switch t := base.Transport.(type) {
	case *http.Transport:
		tr = t.Clone()
	case nil:
		if dt, ok := http.DefaultTransport.(*http.Transport); ok {
			tr = dt.Clone()
		} else {
			tr = &http.Transport{}
		}
	default:
		tr = &http.Transport{}
	}
	tr.Proxy = func(r *http.Request) (*url.URL, error) {
		return parsed[r.URL.Scheme], nil
	}

	return &http.Client{
		Transport:     tr,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       base.Timeout,
	}, nil
}

// do sends an HTTP request and returns the body of a 2xx response.
func do(ctx context.Context, client *http.Client, name string, req *http.Request) ([]byte, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, &Error{Engine: name, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Engine: name, Message: "reading response", StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			cut := maxErrorBody
			for cut > 0 && !utf8.RuneStart(msg[cut]) {
				cut--
			}
			msg = msg[:cut]
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Engine: name, Message: msg, StatusCode: resp.StatusCode}
	}

	return body, nil
}
