// Package citation verifies that URLs cited by generated content resolve,
// are on topic for the query, and contain their claimed anchor text.
package citation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/trustgate/internal/cache"
	"github.com/ppiankov/trustgate/internal/markup"
	"github.com/ppiankov/trustgate/internal/model"
)

// Score weights and thresholds
const (
	ResolvesPoints     = 40
	RelevantPoints     = 40
	AnchorPoints       = 20
	VerifiedScore      = 60
	MinAnchorChars     = 3
	DefaultMaxInFlight = 5
)

var tracer = otel.Tracer("trustgate.citation")

var errPanic = errors.New("panic during fetch")

// Options configures a Verifier. Zero values fall back to model.DefaultConfig.
type Options struct {
	HTTP     model.HTTPConfig
	Citation model.CitationConfig

	// Doer overrides the HTTP transport
	Doer Doer

	// Cache stores successful pages; nil disables caching
	Cache cache.Cache

	Logger *slog.Logger

	// OnResult is called once per finished citation
	OnResult func(model.CitationResult)
}

// Verifier checks citations. Safe for concurrent use.
type Verifier struct {
	cfg       model.CitationConfig
	fetcher   *Fetcher
	robots    *RobotsChecker
	limiter   *Limiter
	authority *AuthorityClassifier
	cache     cache.Cache
	logger    *slog.Logger
	onResult  func(model.CitationResult)
	flight    singleflight.Group
}

// New creates a Verifier
func New(opts Options) *Verifier {
	defaults := model.DefaultConfig()

	httpCfg := opts.HTTP
	if httpCfg.Timeout == 0 {
		httpCfg.Timeout = defaults.HTTP.Timeout
	}
	if httpCfg.UserAgent == "" {
		httpCfg.UserAgent = defaults.HTTP.UserAgent
	}
	if httpCfg.MaxBodyBytes == 0 {
		httpCfg.MaxBodyBytes = defaults.HTTP.MaxBodyBytes
	}
	if httpCfg.MaxRedirects == 0 {
		httpCfg.MaxRedirects = defaults.HTTP.MaxRedirects
	}

	cfg := opts.Citation
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxInFlight
	}
	if cfg.MaxQueryTerms <= 0 {
		cfg.MaxQueryTerms = defaults.Citation.MaxQueryTerms
	}
	if cfg.RelevanceThreshold == 0 {
		cfg.RelevanceThreshold = defaults.Citation.RelevanceThreshold
	}
	if len(cfg.Authority.PrimaryDomains)+len(cfg.Authority.SecondaryDomains)+len(cfg.Authority.Domains) == 0 {
		cfg.Authority = defaults.Citation.Authority
	}

	doer := opts.Doer
	if doer == nil {
		doer = NewHTTPClient(httpCfg)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	v := &Verifier{
		cfg:       cfg,
		fetcher:   NewFetcher(doer, httpCfg.Timeout, httpCfg.UserAgent, httpCfg.MaxBodyBytes, httpCfg.Retries),
		cache:     opts.Cache,
		logger:    logger,
		onResult:  opts.OnResult,
		authority: NewAuthorityClassifier(cfg.Authority),
	}
	if cfg.RespectRobots {
		v.robots = NewRobotsChecker(doer, httpCfg.UserAgent, httpCfg.Timeout)
	}
	if cfg.RequestsPerSecond > 0 || cfg.RespectRobots || len(cfg.HostRates) > 0 {
		v.limiter = NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
		for _, hr := range cfg.HostRates {
			v.limiter.SetHostRate(hr.Host, hr.RequestsPerSecond, cfg.BurstSize)
		}
	}

	return v
}

// VerifyCitation fetches one citation and scores it. Failures are reported
// through the result's issues, never as errors.
func (v *Verifier) VerifyCitation(ctx context.Context, c model.Citation, queryContext string) model.CitationResult {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "citation.Verify", trace.WithAttributes(
		attribute.String("url", c.URL),
	))
	defer span.End()

	result := v.verify(ctx, c, queryContext)
	result.Duration = time.Since(start)
	result.Verified = result.Score >= VerifiedScore

	span.SetAttributes(
		attribute.Int("score", result.Score),
		attribute.Bool("verified", result.Verified),
	)
	v.logger.Debug("citation verified",
		"url", c.URL, "score", result.Score, "verified", result.Verified, "issues", result.Issues)

	if v.onResult != nil {
		v.onResult(result)
	}
	return result
}

func (v *Verifier) verify(ctx context.Context, c model.Citation, queryContext string) model.CitationResult {
	result := model.CitationResult{Citation: c, Issues: []string{}}

	if err := checkURL(c.URL); err != nil {
		return failed(result, model.CitationIssueInvalidURL, err)
	}
	result.Authority = v.authority.Classify(c.URL)

	var crawlDelay time.Duration
	if v.robots != nil {
		allowed, delay, err := v.robots.CanFetch(ctx, c.URL)
		if err == nil && !allowed {
			return failed(result, model.CitationIssueRobotsDisallowed, errors.New("disallowed by robots.txt"))
		}
		crawlDelay = delay
	}

	page, err := v.fetch(ctx, c.URL, crawlDelay)
	if err != nil {
		return failed(result, classify(ctx, err), err)
	}

	result.Checks.StatusCode = page.StatusCode
	result.FinalURL = page.FinalURL
	if page.StatusCode != 200 {
		return failed(result, fmt.Sprintf("http_status_%d", page.StatusCode),
			fmt.Errorf("unexpected status: %d", page.StatusCode))
	}
	result.Checks.URLResolves = true
	result.Score += ResolvesPoints

	text, parseErr := markup.VisibleText(string(page.Body))
	if parseErr != nil {
		result.Issues = append(result.Issues, model.CitationIssueParseError)
		result.Error = fmt.Sprintf("parse page: %v", parseErr)
	}
	lower := strings.ToLower(strings.Join(strings.Fields(text), " "))

	if parseErr == nil {
		terms := QueryTerms(queryContext, v.cfg.MaxQueryTerms)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				result.Checks.TermsMatched = append(result.Checks.TermsMatched, term)
			}
		}
		if len(terms) > 0 {
			rel := float64(len(result.Checks.TermsMatched)) / float64(len(terms))
			result.Checks.RelevanceScore = math.Round(rel*10000) / 10000
		}
	}
	result.Checks.ContentRelevant = result.Checks.RelevanceScore > v.cfg.RelevanceThreshold
	if result.Checks.ContentRelevant {
		result.Score += RelevantPoints
	} else if parseErr == nil {
		result.Issues = append(result.Issues, model.CitationIssueLowRelevance)
	}

	anchor := strings.ToLower(strings.Join(strings.Fields(c.AnchorText), " "))
	if utf8.RuneCountInString(anchor) > MinAnchorChars {
		result.Checks.AnchorChecked = true
		result.Checks.AnchorFound = parseErr == nil && strings.Contains(lower, anchor)
		if !result.Checks.AnchorFound {
			result.Issues = append(result.Issues, model.CitationIssueAnchorNotFound)
		}
	} else {
		result.Checks.AnchorFound = true
	}
	if result.Checks.AnchorFound {
		result.Score += AnchorPoints
	}

	return result
}

// fetch deduplicates concurrent fetches of the same URL and consults the
// page cache. Panics in the transport surface as errors.
func (v *Verifier) fetch(ctx context.Context, rawURL string, crawlDelay time.Duration) (*Page, error) {
	key := cache.CacheKey(rawURL)
	if v.cache != nil {
		if raw, ok := v.cache.Get(key); ok {
			var page Page
			if err := json.Unmarshal(raw, &page); err == nil {
				return &page, nil
			}
		}
	}

	val, err, shared := v.flight.Do(rawURL, func() (_ any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", errPanic, r)
			}
		}()

		if v.limiter != nil {
			if err := v.limiter.Wait(ctx, rawURL, crawlDelay); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		page, err := v.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		if v.cache != nil && page.StatusCode == 200 {
			if raw, err := json.Marshal(page); err == nil {
				if err := v.cache.Set(key, raw, v.cfg.CacheTTL); err != nil {
					v.logger.Warn("cache write failed", "url", rawURL, "error", err)
				}
			}
		}
		return page, nil
	})
	if shared {
		v.logger.Debug("shared fetch", "url", rawURL)
	}
	if err != nil {
		return nil, err
	}
	return val.(*Page), nil
}

// VerifyBatch verifies citations with at most maxConcurrent fetches in
// flight. Results follow input order. Items still waiting when ctx ends are
// marked timed out.
func (v *Verifier) VerifyBatch(ctx context.Context, citations []model.Citation, queryContext string, maxConcurrent int) model.BatchSummary {
	if maxConcurrent <= 0 {
		maxConcurrent = v.cfg.MaxConcurrent
	}
	if v.cfg.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.BatchTimeout)
		defer cancel()
	}

	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "citation.VerifyBatch", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("citations", len(citations)),
		attribute.Int("max_concurrent", maxConcurrent),
	))
	defer span.End()

	results := make([]model.CitationResult, len(citations))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, maxConcurrent)

	for i, c := range citations {
		wg.Add(1)
		go func(idx int, c model.Citation) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[idx] = failed(model.CitationResult{Citation: c, Issues: []string{}},
						model.CitationIssueInternal, fmt.Errorf("panic: %v", r))
				}
			}()

			select {
			case <-ctx.Done():
				results[idx] = timedOut(c)
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				results[idx] = timedOut(c)
				return
			}
			results[idx] = v.VerifyCitation(ctx, c, queryContext)
		}(i, c)
	}

	wg.Wait()

	summary := Summarize(results)
	summary.RunID = runID
	span.SetAttributes(
		attribute.Int("verified", summary.VerifiedCount),
		attribute.Int("timed_out", summary.TimedOut),
	)
	return summary
}

// Summarize aggregates results into a batch summary
func Summarize(results []model.CitationResult) model.BatchSummary {
	summary := model.BatchSummary{
		TotalCitations: len(results),
		Results:        results,
	}
	if len(results) == 0 {
		summary.Results = []model.CitationResult{}
		return summary
	}

	var total int
	for _, r := range results {
		total += r.Score
		if r.Verified {
			summary.VerifiedCount++
			if r.Authority == model.AuthorityPrimary {
				summary.PrimarySources++
			}
		}
		for _, issue := range r.Issues {
			if issue == model.CitationIssueTimedOut {
				summary.TimedOut++
				break
			}
		}
	}

	n := float64(len(results))
	summary.VerificationRate = math.Round(float64(summary.VerifiedCount)/n*10000) / 100
	summary.AverageScore = math.Round(float64(total)/n*100) / 100
	return summary
}

func failed(result model.CitationResult, issue string, err error) model.CitationResult {
	result.Issues = append(result.Issues, issue)
	result.Error = err.Error()
	result.Score = 0
	result.Verified = false
	return result
}

func timedOut(c model.Citation) model.CitationResult {
	return failed(model.CitationResult{Citation: c, Issues: []string{}},
		model.CitationIssueTimedOut, errors.New("batch deadline exceeded before fetch"))
}

// classify maps a fetch error to an issue tag
func classify(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, errInvalidURL):
		return model.CitationIssueInvalidURL
	case errors.Is(err, errPanic):
		return model.CitationIssueInternal
	case ctx.Err() != nil:
		return model.CitationIssueTimedOut
	case isTimeout(err):
		return model.CitationIssueTimeout
	default:
		return model.CitationIssueNetworkError
	}
}
