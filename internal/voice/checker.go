// Package voice detects phrasing that drifts away from a target persona.
package voice

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/trustgate/internal/markup"
	"github.com/ppiankov/trustgate/internal/model"
)

// PassThreshold is the minimum consistency score that passes
const PassThreshold = 80.0

// MinSentenceChars drops fragments at or below this length
const MinSentenceChars = 10

const defaultSuggestion = "Rephrase this sentence to match the target voice."

// Checker scans sentences for forbidden phrasing. Safe for concurrent use.
type Checker struct {
	set PatternSet
}

// New returns a Checker over a pattern set. Phrases are lowercased once.
func New(set PatternSet) *Checker {
	phrases := make(map[string][]string, len(set.Phrases))
	for typ, list := range set.Phrases {
		lowered := make([]string, 0, len(list))
		for _, p := range list {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				lowered = append(lowered, p)
			}
		}
		phrases[typ] = lowered
	}
	set.Phrases = phrases
	return &Checker{set: set}
}

// NewDefault returns a Checker over the built-in patterns
func NewDefault() *Checker {
	return New(DefaultPatternSet())
}

// Version returns the pattern set version
func (c *Checker) Version() string {
	return c.set.Version
}

// Check scores how consistently content keeps the target voice. A sentence
// may trigger several pattern types; each counts as one violation.
func (c *Checker) Check(content string, target model.Voice) (model.ConsistencyReport, error) {
	forbidden, ok := c.set.Forbidden[target]
	if !ok {
		return model.ConsistencyReport{}, fmt.Errorf("%w: %q", model.ErrUnknownVoice, target)
	}

	report := model.ConsistencyReport{
		TargetVoice:      target,
		ConsistencyScore: 100,
		Violations:       []model.VoiceViolation{},
		Passed:           true,
		PatternCounts:    map[string]int{},
		PatternsVersion:  c.set.Version,
	}

	var sentences []string
	for _, s := range markup.SplitSentences(markup.StripMarkup(content)) {
		if utf8.RuneCountInString(s) > MinSentenceChars {
			sentences = append(sentences, s)
		}
	}
	report.TotalSentences = len(sentences)
	if len(sentences) == 0 {
		return report, nil
	}

	for i, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, typ := range forbidden {
			phrase := firstMatch(lower, c.set.Phrases[typ])
			if phrase == "" {
				continue
			}
			report.Violations = append(report.Violations, model.VoiceViolation{
				SentenceIndex: i,
				Excerpt:       excerpt(sentence),
				PatternType:   typ,
				MatchedPhrase: phrase,
				Suggestion:    c.suggestion(typ, target),
			})
			report.PatternCounts[typ]++
		}
	}

	n := float64(len(sentences))
	score := (n - float64(len(report.Violations))) / n * 100
	report.ConsistencyScore = math.Round(math.Max(0, math.Min(100, score))*100) / 100
	report.Passed = report.ConsistencyScore >= PassThreshold

	return report, nil
}

func (c *Checker) suggestion(typ string, target model.Voice) string {
	if s := c.set.Suggestions[typ][target]; s != "" {
		return s
	}
	return defaultSuggestion
}

func firstMatch(sentence string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(sentence, p) {
			return p
		}
	}
	return ""
}

func excerpt(s string) string {
	const max = 120
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}
