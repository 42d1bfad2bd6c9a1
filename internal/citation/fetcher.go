package citation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

var errInvalidURL = errors.New("invalid url")

// Page is a fetched citation target. Non-200 responses are returned as
// pages with their status code; only transport failures are errors.
type Page struct {
	StatusCode  int
	ContentType string
	Body        []byte
	FinalURL    string
}

// Fetcher fetches citation pages
type Fetcher struct {
	doer      Doer
	userAgent string
	maxBytes  int64
	timeout   time.Duration
	retries   int
}

// NewFetcher creates a Fetcher. A zero timeout disables the per-fetch deadline.
func NewFetcher(doer Doer, timeout time.Duration, userAgent string, maxBytes int64, retries int) *Fetcher {
	return &Fetcher{
		doer:      doer,
		userAgent: userAgent,
		maxBytes:  maxBytes,
		timeout:   timeout,
		retries:   retries,
	}
}

// Fetch retrieves rawURL, retrying 429, 5xx and transient network errors
// with exponential backoff
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := checkURL(rawURL); err != nil {
		return nil, err
	}

	var (
		page *Page
		err  error
	)
	for attempt := 0; attempt <= f.retries; attempt++ {
		page, err = f.fetchOnce(ctx, rawURL)
		if !isRetryable(page, err) || ctx.Err() != nil {
			return page, err
		}
		if attempt < f.retries {
			fetchSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return page, err
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*Page, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidURL, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	page := &Page{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    rawURL,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		page.FinalURL = resp.Request.URL.String()
	}

	if resp.StatusCode != http.StatusOK {
		return page, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	page.Body = body

	return page, nil
}

// checkURL accepts absolute http(s) URLs only
func checkURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidURL, rawURL)
	}
	return nil
}

func isRetryable(page *Page, err error) bool {
	if err != nil {
		return !errors.Is(err, errInvalidURL) && (isTimeout(err) || isTransient(err))
	}
	return page.StatusCode == http.StatusTooManyRequests || page.StatusCode >= 500
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isTransient checks error strings for transient network failures
func isTransient(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
