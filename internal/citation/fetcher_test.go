package citation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/trustgate/internal/model"
)

func testClient(redirects int) *http.Client {
	return NewHTTPClient(model.HTTPConfig{MaxRedirects: redirects})
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("unexpected user agent %q", got)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testClient(10), 5*time.Second, "test-agent", 1<<20, 0)
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(page.Body) != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected body: %s", page.Body)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", page.StatusCode)
	}
}

func TestFetch_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	defer func() { fetchSleepFunc = origSleep }()

	fetcher := NewFetcher(testClient(10), 5*time.Second, "test-agent", 1<<20, 2)
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 after retries, got %d", page.StatusCode)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewFetcher(testClient(10), 5*time.Second, "test-agent", 1<<20, 3)
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected page for 404, got error %v", err)
	}
	if page.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", page.StatusCode)
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts.Load())
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 1000))
	}))
	defer server.Close()

	fetcher := NewFetcher(testClient(10), 5*time.Second, "test-agent", 100, 0)
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(page.Body) != 100 {
		t.Errorf("Expected body capped at 100 bytes, got %d", len(page.Body))
	}
}

func TestFetch_RedirectCap(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/again", http.StatusFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testClient(2), 5*time.Second, "test-agent", 1<<20, 0)
	if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("Expected redirect loop to fail")
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	fetcher := NewFetcher(testClient(10), time.Second, "test-agent", 1<<20, 0)

	for _, raw := range []string{"", "not a url", "ftp://example.com/file", "/relative/path", "https://"} {
		_, err := fetcher.Fetch(context.Background(), raw)
		if !errors.Is(err, errInvalidURL) {
			t.Errorf("%q: expected errInvalidURL, got %v", raw, err)
		}
	}
}

func TestNewProxyFunc_NoProxy(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:8080", "", "skip.example")

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/page", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u == nil || u.Host != "proxy.internal:8080" {
		t.Errorf("expected proxy for example.com, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://skip.example/page", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u != nil {
		t.Errorf("expected no proxy for skip.example, got %v", u)
	}
}

func TestQueryTerms(t *testing.T) {
	got := QueryTerms("How to fix the water heater in Denver, Denver CO", 10)
	want := []string{"fix", "water", "heater", "denver"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("QueryTerms = %v, want %v", got, want)
	}

	if got := QueryTerms("alpha beta gamma delta", 2); len(got) != 2 || got[1] != "beta" {
		t.Errorf("expected first two terms, got %v", got)
	}

	if got := QueryTerms("", 10); len(got) != 0 {
		t.Errorf("expected no terms, got %v", got)
	}
}
