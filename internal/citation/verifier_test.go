package citation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/trustgate/internal/cache"
	"github.com/ppiankov/trustgate/internal/model"
)

const guidePage = `<html><body>
<nav>plumbing services menu</nav>
<h1>Water Heater Repair Guide</h1>
<p>How to flush a tank water heater in Denver before winter.</p>
<footer>roofing partners</footer>
</body></html>`

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/guide":
			w.Header().Set("Content-Type", "text/html")
			_, _ = fmt.Fprint(w, guidePage)
		case "/gone":
			http.Error(w, "gone", http.StatusNotFound)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

// fakeDoer records peak concurrency and serves a fixed page
type fakeDoer struct {
	delay    time.Duration
	body     string
	panicOn  string
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (d *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	n := d.inFlight.Add(1)
	defer d.inFlight.Add(-1)
	for {
		p := d.peak.Load()
		if n <= p || d.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if d.panicOn != "" && strings.Contains(req.URL.String(), d.panicOn) {
		panic("transport exploded")
	}

	select {
	case <-req.Context().Done():
		return nil, req.Context().Err()
	case <-time.After(d.delay):
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader(d.body)),
		Request:    req,
	}, nil
}

func hasIssue(r model.CitationResult, issue string) bool {
	for _, i := range r.Issues {
		if i == issue {
			return true
		}
	}
	return false
}

func TestVerifyCitation_NotFound(t *testing.T) {
	server := pageServer(t)
	v := New(Options{})

	r := v.VerifyCitation(context.Background(), model.Citation{URL: server.URL + "/gone"}, "water heater")

	if r.Verified {
		t.Error("expected 404 citation to be unverified")
	}
	if r.Score >= VerifiedScore {
		t.Errorf("expected score < %d, got %d", VerifiedScore, r.Score)
	}
	if !hasIssue(r, "http_status_404") {
		t.Errorf("expected http_status_404 issue, got %v", r.Issues)
	}
	if r.Checks.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404 in checks, got %d", r.Checks.StatusCode)
	}
}

func TestVerifyCitation_FullScore(t *testing.T) {
	server := pageServer(t)
	v := New(Options{})

	c := model.Citation{URL: server.URL + "/guide", AnchorText: "Water Heater Repair Guide"}
	r := v.VerifyCitation(context.Background(), c, "water heater repair Denver")

	if r.Score != 100 || !r.Verified {
		t.Fatalf("expected verified score 100, got %d (%v)", r.Score, r.Issues)
	}
	if r.Checks.RelevanceScore != 1 {
		t.Errorf("expected relevance 1, got %v", r.Checks.RelevanceScore)
	}
	if !r.Checks.AnchorChecked || !r.Checks.AnchorFound {
		t.Errorf("expected anchor checked and found: %+v", r.Checks)
	}
	if len(r.Issues) != 0 {
		t.Errorf("expected no issues, got %v", r.Issues)
	}
}

func TestVerifyCitation_MissingAnchorNeverPenalizes(t *testing.T) {
	server := pageServer(t)
	v := New(Options{})

	for _, anchor := range []string{"", "see", "  ab "} {
		r := v.VerifyCitation(context.Background(), model.Citation{URL: server.URL + "/guide", AnchorText: anchor}, "roof shingle replacement cost")

		if r.Checks.AnchorChecked {
			t.Errorf("anchor %q: expected no anchor check", anchor)
		}
		if !r.Checks.AnchorFound {
			t.Errorf("anchor %q: expected anchor to default to found", anchor)
		}
		// resolves + anchor, not relevant
		if r.Score != 60 || !r.Verified {
			t.Errorf("anchor %q: expected verified score 60, got %d", anchor, r.Score)
		}
		if !hasIssue(r, model.CitationIssueLowRelevance) {
			t.Errorf("anchor %q: expected low_relevance, got %v", anchor, r.Issues)
		}
	}
}

func TestVerifyCitation_AnchorNotFound(t *testing.T) {
	server := pageServer(t)
	v := New(Options{})

	c := model.Citation{URL: server.URL + "/guide", AnchorText: "Electrical panel upgrades"}
	r := v.VerifyCitation(context.Background(), c, "water heater")

	if r.Score != 80 {
		t.Errorf("expected score 80, got %d", r.Score)
	}
	if !hasIssue(r, model.CitationIssueAnchorNotFound) {
		t.Errorf("expected anchor_not_found, got %v", r.Issues)
	}
}

func TestVerifyCitation_IgnoresNavAndFooterText(t *testing.T) {
	server := pageServer(t)
	v := New(Options{})

	r := v.VerifyCitation(context.Background(), model.Citation{URL: server.URL + "/guide"}, "plumbing roofing")

	if r.Checks.RelevanceScore != 0 || r.Checks.ContentRelevant {
		t.Errorf("expected nav/footer terms to be ignored, got %+v", r.Checks)
	}
}

func TestVerifyCitation_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	v := New(Options{HTTP: model.HTTPConfig{Timeout: 50 * time.Millisecond}})
	r := v.VerifyCitation(context.Background(), model.Citation{URL: server.URL}, "anything")

	if !hasIssue(r, model.CitationIssueTimeout) {
		t.Errorf("expected timeout issue, got %v (%s)", r.Issues, r.Error)
	}
	if r.Verified || r.Score != 0 {
		t.Errorf("expected unverified zero score, got %d", r.Score)
	}
}

func TestVerifyCitation_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	v := New(Options{})
	r := v.VerifyCitation(context.Background(), model.Citation{URL: url}, "anything")

	if !hasIssue(r, model.CitationIssueNetworkError) {
		t.Errorf("expected network_error, got %v (%s)", r.Issues, r.Error)
	}
}

func TestVerifyCitation_InvalidURL(t *testing.T) {
	doer := &fakeDoer{}
	v := New(Options{Doer: doer})

	r := v.VerifyCitation(context.Background(), model.Citation{URL: "mailto:someone@example.com"}, "anything")

	if !hasIssue(r, model.CitationIssueInvalidURL) {
		t.Errorf("expected invalid_url, got %v", r.Issues)
	}
	if doer.calls.Load() != 0 {
		t.Errorf("expected no fetch for invalid URL")
	}
}

func TestVerifyCitation_RobotsDisallowed(t *testing.T) {
	var pageHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		pageHits.Add(1)
		_, _ = fmt.Fprint(w, guidePage)
	}))
	defer server.Close()

	v := New(Options{Citation: model.CitationConfig{RespectRobots: true}})

	r := v.VerifyCitation(context.Background(), model.Citation{URL: server.URL + "/private/page"}, "water heater")
	if !hasIssue(r, model.CitationIssueRobotsDisallowed) {
		t.Errorf("expected robots_disallowed, got %v", r.Issues)
	}
	if pageHits.Load() != 0 {
		t.Errorf("expected disallowed page not to be fetched")
	}

	r = v.VerifyCitation(context.Background(), model.Citation{URL: server.URL + "/public"}, "water heater")
	if !r.Verified {
		t.Errorf("expected public page to verify, got %v", r.Issues)
	}
}

func TestVerifyCitation_CacheAvoidsRefetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, guidePage)
	}))
	defer server.Close()

	v := New(Options{
		Citation: model.CitationConfig{CacheTTL: time.Minute},
		Cache:    cache.NewMemoryCache(time.Minute, time.Minute),
	})

	for i := 0; i < 3; i++ {
		r := v.VerifyCitation(context.Background(), model.Citation{URL: server.URL}, "water heater")
		if !r.Verified {
			t.Fatalf("attempt %d: expected verified, got %v", i, r.Issues)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 fetch with cache, got %d", hits.Load())
	}
}

func TestVerifyBatch_BoundsConcurrencyAndKeepsOrder(t *testing.T) {
	const n, k = 20, 3
	doer := &fakeDoer{delay: 20 * time.Millisecond, body: guidePage}
	v := New(Options{Doer: doer})

	citations := make([]model.Citation, n)
	for i := range citations {
		citations[i] = model.Citation{URL: fmt.Sprintf("https://site%d.example/guide", i)}
	}

	summary := v.VerifyBatch(context.Background(), citations, "water heater", k)

	if len(summary.Results) != n || summary.TotalCitations != n {
		t.Fatalf("expected %d results, got %d", n, len(summary.Results))
	}
	for i, r := range summary.Results {
		if r.Citation.URL != citations[i].URL {
			t.Errorf("result %d out of order: %s", i, r.Citation.URL)
		}
	}
	if peak := doer.peak.Load(); peak > k {
		t.Errorf("observed %d concurrent fetches, limit %d", peak, k)
	}
	if summary.VerifiedCount != n || summary.VerificationRate != 100 {
		t.Errorf("expected all verified, got %d (%v%%)", summary.VerifiedCount, summary.VerificationRate)
	}
	if summary.RunID == "" {
		t.Error("expected run id")
	}
}

func TestVerifyBatch_IsolatesFailures(t *testing.T) {
	doer := &fakeDoer{body: guidePage, panicOn: "boom"}
	v := New(Options{Doer: doer})

	citations := []model.Citation{
		{URL: "https://ok.example/a"},
		{URL: "https://boom.example/b"},
		{URL: "::not-a-url"},
		{URL: "https://ok.example/c"},
	}
	summary := v.VerifyBatch(context.Background(), citations, "water heater", 2)

	if len(summary.Results) != len(citations) {
		t.Fatalf("expected %d results, got %d", len(citations), len(summary.Results))
	}
	if !summary.Results[0].Verified || !summary.Results[3].Verified {
		t.Error("expected healthy citations to verify")
	}
	if !hasIssue(summary.Results[1], model.CitationIssueInternal) {
		t.Errorf("expected internal_error for panicking fetch, got %v", summary.Results[1].Issues)
	}
	if !hasIssue(summary.Results[2], model.CitationIssueInvalidURL) {
		t.Errorf("expected invalid_url, got %v", summary.Results[2].Issues)
	}
	if summary.VerifiedCount != 2 || summary.VerificationRate != 50 {
		t.Errorf("expected 2 verified (50%%), got %d (%v)", summary.VerifiedCount, summary.VerificationRate)
	}
	if summary.AverageScore != 50 {
		t.Errorf("expected average 50, got %v", summary.AverageScore)
	}
}

func TestVerifyBatch_DeadlineMarksTimedOut(t *testing.T) {
	doer := &fakeDoer{delay: time.Hour, body: guidePage}
	v := New(Options{Doer: doer})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	citations := []model.Citation{
		{URL: "https://a.example"}, {URL: "https://b.example"}, {URL: "https://c.example"},
	}

	start := time.Now()
	summary := v.VerifyBatch(ctx, citations, "water heater", 1)

	if time.Since(start) > 5*time.Second {
		t.Fatal("batch did not honor deadline")
	}
	if len(summary.Results) != 3 || summary.TimedOut != 3 {
		t.Fatalf("expected 3 timed out results, got %d of %d", summary.TimedOut, len(summary.Results))
	}
	for _, r := range summary.Results {
		if !hasIssue(r, model.CitationIssueTimedOut) {
			t.Errorf("%s: expected timed_out, got %v", r.Citation.URL, r.Issues)
		}
	}
}

func TestVerifyBatch_DuplicateURLsShareFetch(t *testing.T) {
	doer := &fakeDoer{delay: 200 * time.Millisecond, body: guidePage}

	var mu sync.Mutex
	var seen int
	v := New(Options{Doer: doer, OnResult: func(model.CitationResult) {
		mu.Lock()
		seen++
		mu.Unlock()
	}})

	url := "https://same.example/guide"
	citations := []model.Citation{{URL: url}, {URL: url}, {URL: url}, {URL: url}}
	summary := v.VerifyBatch(context.Background(), citations, "water heater", 4)

	if doer.calls.Load() != 1 {
		t.Errorf("expected 1 shared fetch, got %d", doer.calls.Load())
	}
	if summary.VerifiedCount != 4 {
		t.Errorf("expected every duplicate verified, got %d", summary.VerifiedCount)
	}
	if seen != 4 {
		t.Errorf("expected OnResult per citation, got %d", seen)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalCitations != 0 || s.Results == nil {
		t.Errorf("expected empty, non-nil results: %+v", s)
	}
}
