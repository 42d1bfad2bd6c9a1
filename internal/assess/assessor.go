package assess

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ppiankov/trustgate/internal/markup"
	"github.com/ppiankov/trustgate/internal/model"
)

// assessmentNamespace scopes content-derived assessment IDs
var assessmentNamespace = uuid.MustParse("6f1c1f8e-2f4b-4d57-9c1e-5a3b8e0d7c21")

// Assessor runs the tiered content checks. It is stateless and safe for
// concurrent use.
type Assessor struct {
	policy  Policy
	passive map[string]bool
}

// New creates an Assessor with the given policy
func New(policy Policy) *Assessor {
	passive := make(map[string]bool, len(policy.PassiveMarkers))
	for _, m := range policy.PassiveMarkers {
		passive[strings.ToLower(m)] = true
	}
	return &Assessor{policy: policy, passive: passive}
}

// NewDefault creates an Assessor with DefaultPolicy
func NewDefault() *Assessor {
	return New(DefaultPolicy())
}

// Policy returns the policy in use
func (a *Assessor) Policy() Policy {
	return a.policy
}

// Assess validates content and computes its QA score. Degenerate input
// (empty or short content) produces critical issues, never an error.
func (a *Assessor) Assess(content, title string) model.ContentAssessment {
	text := markup.StripMarkup(content)

	tier1 := a.tier1(content, title)
	tier2 := a.tier2(text)
	tier3 := a.tier3(content)

	score := a.policy.Score(len(tier1), len(tier2), len(tier3))

	return model.ContentAssessment{
		ID:          uuid.NewSHA1(assessmentNamespace, []byte(title+"\x00"+content)).String(),
		Title:       title,
		Content:     content,
		Tier1Issues: tier1,
		Tier2Issues: tier2,
		Tier3Issues: tier3,
		QAScore:     score,
		TotalIssues: len(tier1) + len(tier2) + len(tier3),
		Passed:      a.policy.Passed(score),
		Breakdown: map[string]any{
			"formula":      fmt.Sprintf("clamp(100 - %d*tier1 - %d*tier2 - %d*tier3, 0, 100)", a.policy.Tier1Weight, a.policy.Tier2Weight, a.policy.Tier3Weight),
			"tier1_issues": len(tier1),
			"tier2_issues": len(tier2),
			"tier3_issues": len(tier3),
			"pass_score":   a.policy.PassScore,
		},
	}
}

// tier1 checks structural requirements
func (a *Assessor) tier1(content, title string) []model.Issue {
	issues := []model.Issue{}

	chars := utf8.RuneCountInString(content)
	if chars < a.policy.MinContentChars {
		issues = append(issues, critical(model.IssueContentTooShort,
			fmt.Sprintf("Content is %d characters; at least %d required", chars, a.policy.MinContentChars),
			map[string]any{"chars": chars, "min": a.policy.MinContentChars}))
	}

	trimmedTitle := strings.TrimSpace(title)
	titleChars := utf8.RuneCountInString(trimmedTitle)
	switch {
	case trimmedTitle == "":
		issues = append(issues, critical(model.IssueMissingTitle, "Title is missing", nil))
	case titleChars < a.policy.MinTitleChars:
		issues = append(issues, critical(model.IssueTitleTooShort,
			fmt.Sprintf("Title is %d characters; at least %d required", titleChars, a.policy.MinTitleChars),
			map[string]any{"chars": titleChars, "min": a.policy.MinTitleChars}))
	}

	paragraphs := len(markup.Paragraphs(content))
	if paragraphs < a.policy.MinParagraphs {
		issues = append(issues, critical(model.IssueInsufficientParagraphs,
			fmt.Sprintf("Content has %d paragraph(s); at least %d required", paragraphs, a.policy.MinParagraphs),
			map[string]any{"paragraphs": paragraphs, "min": a.policy.MinParagraphs}))
	}

	return issues
}

// tier2 checks language quality on plain text
func (a *Assessor) tier2(text string) []model.Issue {
	issues := []model.Issue{}

	long := 0
	longest := 0
	for _, s := range markup.SplitSentences(text) {
		n := len(markup.Words(s))
		if n > a.policy.LongSentenceWords {
			long++
		}
		if n > longest {
			longest = n
		}
	}
	if long > 0 {
		issues = append(issues, warning(model.IssueLongSentences,
			fmt.Sprintf("%d sentence(s) exceed %d words", long, a.policy.LongSentenceWords),
			map[string]any{"count": long, "longest": longest, "max_words": a.policy.LongSentenceWords}))
	}

	words := markup.Words(text)
	if len(words) > 0 {
		passive := 0
		for _, w := range words {
			if a.passive[markup.NormalizeToken(w)] {
				passive++
			}
		}
		density := float64(passive) / float64(len(words))
		if density > a.policy.MaxPassiveDensity {
			issues = append(issues, warning(model.IssuePassiveVoice,
				fmt.Sprintf("Passive voice density %.0f%% exceeds %.0f%%", density*100, a.policy.MaxPassiveDensity*100),
				map[string]any{"markers": passive, "words": len(words), "density": density, "formula": "markers / words"}))
		}
	}

	if a.policy.DetectRepetition {
		if repeats := markup.AdjacentRepeats(text); len(repeats) > 0 {
			repeated := make([]string, len(repeats))
			for i, r := range repeats {
				repeated[i] = r.Word
			}
			issues = append(issues, warning(model.IssueRepetitiveWords,
				fmt.Sprintf("%d adjacent repeated word(s): %s", len(repeats), strings.Join(repeated, ", ")),
				map[string]any{"count": len(repeats), "words": repeated}))
		}
	}

	return issues
}

// tier3 suggests structural enhancements
func (a *Assessor) tier3(content string) []model.Issue {
	issues := []model.Issue{}

	structure := markup.Analyze(content)
	if structure.Subheadings == 0 {
		issues = append(issues, info(model.IssueMissingSubheadings, "Consider adding subheadings to break up the content", nil))
	}
	if structure.Lists == 0 {
		issues = append(issues, info(model.IssueMissingLists, "Consider adding a bulleted or numbered list", nil))
	}

	return issues
}

func critical(t model.IssueType, msg string, data map[string]any) model.Issue {
	return model.Issue{Type: t, Tier: 1, Severity: model.SeverityCritical, Message: msg, Data: data}
}

func warning(t model.IssueType, msg string, data map[string]any) model.Issue {
	return model.Issue{Type: t, Tier: 2, Severity: model.SeverityWarning, Message: msg, Data: data}
}

func info(t model.IssueType, msg string, data map[string]any) model.Issue {
	return model.Issue{Type: t, Tier: 3, Severity: model.SeverityInfo, Message: msg, Data: data}
}
