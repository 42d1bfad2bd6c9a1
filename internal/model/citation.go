package model

import "time"

// Citation is a URL cited by generated content, with its visible anchor label
type Citation struct {
	URL        string `json:"url" yaml:"url"`
	AnchorText string `json:"anchor_text,omitempty" yaml:"anchor_text,omitempty"`
}

// SourceAuthority grades where a cited page comes from
type SourceAuthority string

// Authority tiers
const (
	AuthorityPrimary   SourceAuthority = "primary"   // Statutes, regulators, academic and public-sector sites
	AuthoritySecondary SourceAuthority = "secondary" // Encyclopedias, trade bodies, major publishers
	AuthorityTertiary  SourceAuthority = "tertiary"  // Blogs, vendors, everything else
)

// Citation issue tags
const (
	CitationIssueInvalidURL       = "invalid_url"
	CitationIssueTimeout          = "timeout"
	CitationIssueNetworkError     = "network_error"
	CitationIssueTimedOut         = "timed_out" // Batch deadline passed before the item ran
	CitationIssueRobotsDisallowed = "robots_disallowed"
	CitationIssueParseError       = "parse_error"
	CitationIssueLowRelevance     = "low_relevance"
	CitationIssueAnchorNotFound   = "anchor_not_found"
	CitationIssueInternal         = "internal_error"
)

// CitationChecks holds the individual check outcomes for one citation
type CitationChecks struct {
	URLResolves     bool     `json:"url_resolves"`
	StatusCode      int      `json:"status_code,omitempty"`
	ContentRelevant bool     `json:"content_relevant"`
	RelevanceScore  float64  `json:"relevance_score"`
	AnchorFound     bool     `json:"anchor_found"`
	AnchorChecked   bool     `json:"anchor_checked"`
	TermsMatched    []string `json:"terms_matched,omitempty"`
}

// CitationResult is the verdict for one citation
type CitationResult struct {
	Citation Citation       `json:"citation"`
	Checks   CitationChecks `json:"checks"`
	Score    int            `json:"score"`
	Verified bool           `json:"verified"`
	Issues   []string       `json:"issues,omitempty"`
	Error    string         `json:"error,omitempty"`
	FinalURL string         `json:"final_url,omitempty"`

	// Authority is informational and does not affect Score
	Authority SourceAuthority `json:"authority,omitempty"`
	Duration  time.Duration   `json:"duration_ns,omitempty"`
}

// BatchSummary aggregates citation results. Results follow input order.
type BatchSummary struct {
	RunID            string           `json:"run_id"`
	TotalCitations   int              `json:"total_citations"`
	VerifiedCount    int              `json:"verified_count"`
	VerificationRate float64          `json:"verification_rate"`
	AverageScore     float64          `json:"average_score"`
	TimedOut         int              `json:"timed_out,omitempty"`
	PrimarySources   int              `json:"primary_sources"`
	Results          []CitationResult `json:"results"`
}
