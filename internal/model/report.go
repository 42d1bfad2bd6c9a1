package model

import "time"

// ContentItem is one piece of generated content submitted for checking
type ContentItem struct {
	Content      string            `json:"content" yaml:"content"`
	Title        string            `json:"title,omitempty" yaml:"title,omitempty"`
	Industry     string            `json:"industry,omitempty" yaml:"industry,omitempty"`
	Profile      map[string]string `json:"profile,omitempty" yaml:"profile,omitempty"`
	TargetVoice  Voice             `json:"target_voice,omitempty" yaml:"target_voice,omitempty"`
	QueryContext string            `json:"query_context,omitempty" yaml:"query_context,omitempty"`
	Citations    []Citation        `json:"citations,omitempty" yaml:"citations,omitempty"` // Extracted from content links when empty
}

// Report bundles every verdict produced for a ContentItem.
// Sections are nil when the corresponding check was not requested.
type Report struct {
	ID          string               `json:"id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Assessment  ContentAssessment    `json:"assessment"`
	Facts       *VerificationSummary `json:"facts,omitempty"`
	Voice       *ConsistencyReport   `json:"voice,omitempty"`
	Citations   *BatchSummary        `json:"citations,omitempty"`
	Rules       []CheckOutcome       `json:"rules,omitempty"`
	Remediation *Remediation         `json:"remediation,omitempty"`
	Versions    map[string]string    `json:"versions,omitempty"` // Table versions the verdicts were produced with
	AllPassed   bool                 `json:"all_passed"`
}

// Remediation is the outcome of an auto-fix pass. Changes is a
// human-readable log, not a diff.
type Remediation struct {
	Content       string   `json:"content"`
	Changes       []string `json:"changes"`
	Applied       bool     `json:"applied"`
	SkippedReason string   `json:"skipped_reason,omitempty"`
}
