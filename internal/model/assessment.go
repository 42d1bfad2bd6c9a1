package model

// Severity indicates how much an issue should weigh in the score
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// IssueType is a stable identifier for a content issue
type IssueType string

const (
	IssueContentTooShort        IssueType = "content_too_short"
	IssueMissingTitle           IssueType = "missing_title"
	IssueTitleTooShort          IssueType = "title_too_short"
	IssueInsufficientParagraphs IssueType = "insufficient_paragraphs"
	IssueLongSentences          IssueType = "long_sentences"
	IssuePassiveVoice           IssueType = "passive_voice"
	IssueRepetitiveWords        IssueType = "repetitive_words"
	IssueMissingSubheadings     IssueType = "missing_subheadings"
	IssueMissingLists           IssueType = "missing_lists"
)

// Issue is a single finding produced by a tier validator
type Issue struct {
	Type     IssueType      `json:"type"`
	Tier     int            `json:"tier"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"` // Transparent inputs (counts, ratios, thresholds)
}

// ContentAssessment is the outcome of one Assess call
type ContentAssessment struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"-"` // Assessed text; kept out of reports
	Tier1Issues []Issue        `json:"tier1_issues"`
	Tier2Issues []Issue        `json:"tier2_issues"`
	Tier3Issues []Issue        `json:"tier3_issues"`
	QAScore     int            `json:"qa_score"`
	TotalIssues int            `json:"total_issues"`
	Passed      bool           `json:"passed"`
	Breakdown   map[string]any `json:"breakdown,omitempty"` // Score formula and its inputs
}

// AllIssues returns tier 1, 2 and 3 issues in order
func (a ContentAssessment) AllIssues() []Issue {
	all := make([]Issue, 0, a.TotalIssues)
	all = append(all, a.Tier1Issues...)
	all = append(all, a.Tier2Issues...)
	all = append(all, a.Tier3Issues...)
	return all
}
