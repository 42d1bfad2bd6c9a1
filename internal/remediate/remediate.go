// Package remediate applies bounded, whitelisted fixes to content that
// failed only style checks.
package remediate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/trustgate/internal/markup"
	"github.com/ppiankov/trustgate/internal/model"
)

// Fixable lists the only issue types auto-remediation may touch
var Fixable = []model.IssueType{
	model.IssueLongSentences,
	model.IssueRepetitiveWords,
	model.IssuePassiveVoice,
}

var conjunctions = map[string]bool{"and": true, "but": true, "or": true, "so": true, "yet": true}

// Conjunctions dropped at the split point; the rest start the new sentence
var droppedConjunctions = map[string]bool{"and": true}

var blockSplit = regexp.MustCompile(`\n\s*\n`)

// Result is the outcome of Apply
type Result = model.Remediation

// Remediator fixes long sentences and adjacent repeated words
type Remediator struct {
	maxWords int
}

// New creates a Remediator that splits sentences longer than maxWords
func New(maxWords int) *Remediator {
	if maxWords <= 0 {
		maxWords = 40
	}
	return &Remediator{maxWords: maxWords}
}

// Apply fixes content for the given issues. Nothing is changed when any
// issue is critical or outside Fixable.
func (r *Remediator) Apply(content string, issues []model.Issue) Result {
	result := Result{Content: content, Changes: []string{}}

	if len(issues) == 0 {
		result.SkippedReason = "no issues to fix"
		return result
	}

	present := make(map[model.IssueType]bool)
	for _, issue := range issues {
		if issue.Severity == model.SeverityCritical {
			result.SkippedReason = fmt.Sprintf("critical issue %q requires manual review", issue.Type)
			return result
		}
		if !isFixable(issue.Type) {
			result.SkippedReason = fmt.Sprintf("issue type %q is not auto-fixable", issue.Type)
			return result
		}
		present[issue.Type] = true
	}

	out := content
	if present[model.IssueRepetitiveWords] {
		var n int
		out, n = collapseRepeats(out)
		if n > 0 {
			result.Changes = append(result.Changes, fmt.Sprintf("Removed %d repeated word(s)", n))
		}
	}

	if present[model.IssueLongSentences] {
		if markup.LooksLikeHTML(out) {
			result.Changes = append(result.Changes, "Long sentences left unchanged: HTML content")
		} else {
			var log []string
			out, log = r.splitLongSentences(out)
			result.Changes = append(result.Changes, log...)
		}
	}

	if present[model.IssuePassiveVoice] {
		result.Changes = append(result.Changes, "Passive voice left for editor review")
	}

	result.Content = out
	result.Applied = out != content
	return result
}

// ApplyAssessment remediates an assessment's Tier-2 issues. Tier-3
// suggestions are structural and ignored. Critical issues produce a skipped
// Result. ok is false when there is nothing to attempt.
func (r *Remediator) ApplyAssessment(content string, a model.ContentAssessment) (Result, bool) {
	if len(a.Tier1Issues) > 0 {
		return r.Apply(content, a.Tier1Issues), true
	}
	if len(a.Tier2Issues) == 0 {
		return Result{}, false
	}
	return r.Apply(content, a.Tier2Issues), true
}

func isFixable(t model.IssueType) bool {
	for _, f := range Fixable {
		if f == t {
			return true
		}
	}
	return false
}

// collapseRepeats removes the earlier token of each adjacent repeat
func collapseRepeats(text string) (string, int) {
	repeats := markup.AdjacentRepeats(text)
	if len(repeats) == 0 {
		return text, 0
	}

	var b strings.Builder
	last := 0
	for _, rep := range repeats {
		b.WriteString(text[last:rep.Start])
		last = rep.End
	}
	b.WriteString(text[last:])

	return b.String(), len(repeats)
}

// splitLongSentences rewrites each paragraph holding an over-long sentence,
// splitting that sentence at the conjunction nearest its midpoint
func (r *Remediator) splitLongSentences(content string) (string, []string) {
	var log []string

	seps := blockSplit.FindAllStringIndex(content, -1)
	var b strings.Builder
	start := 0
	for i := 0; i <= len(seps); i++ {
		end := len(content)
		if i < len(seps) {
			end = seps[i][0]
		}

		block := content[start:end]
		changed := false
		var sentences []string
		for _, s := range markup.SplitSentences(block) {
			first, second, ok := r.split(s)
			if !ok {
				sentences = append(sentences, s)
				continue
			}
			changed = true
			sentences = append(sentences, first, second)
			log = append(log, fmt.Sprintf("Split %d-word sentence starting %q", len(markup.Words(s)), excerpt(s)))
		}

		if changed {
			b.WriteString(strings.Join(sentences, " "))
		} else {
			b.WriteString(block)
		}

		if i < len(seps) {
			b.WriteString(content[seps[i][0]:seps[i][1]])
			start = seps[i][1]
		}
	}

	return b.String(), log
}

// split breaks one sentence in two when it exceeds the word limit and a
// conjunction is available away from its edges
func (r *Remediator) split(sentence string) (string, string, bool) {
	words := markup.Words(sentence)
	if len(words) <= r.maxWords {
		return "", "", false
	}

	mid := len(words) / 2
	best := -1
	for i := 1; i < len(words)-1; i++ {
		if !conjunctions[strings.ToLower(words[i])] {
			continue
		}
		if best == -1 || abs(i-mid) < abs(best-mid) {
			best = i
		}
	}
	if best == -1 {
		return "", "", false
	}

	head := strings.TrimRight(strings.Join(words[:best], " "), ",;:") + "."

	tailWords := words[best:]
	if droppedConjunctions[strings.ToLower(words[best])] {
		tailWords = words[best+1:]
	}
	tail := capitalize(strings.Join(tailWords, " "))

	return head, tail, true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func excerpt(s string) string {
	words := markup.Words(s)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ") + "..."
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
