package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/trustgate/internal/model"
)

// FallbackConfidence is reported when no tier keyword matched
const FallbackConfidence = 0.3

// Classifier assigns natural-language rules to enforcement tiers.
// It holds only compiled, read-only tables and is safe for concurrent use.
type Classifier struct {
	version string
	tiers   [3][]*regexp.Regexp
}

// New compiles the given tables into a Classifier
func New(tables Tables) (*Classifier, error) {
	c := &Classifier{version: tables.Version}

	for i, patterns := range [3][]string{tables.Tier1, tables.Tier2, tables.Tier3} {
		for _, p := range patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("tier %d pattern %q: %w", i+1, p, err)
			}
			c.tiers[i] = append(c.tiers[i], re)
		}
	}

	return c, nil
}

// NewDefault returns a Classifier over DefaultTables
func NewDefault() *Classifier {
	c, err := New(DefaultTables())
	if err != nil {
		panic(fmt.Sprintf("default classifier tables: %v", err))
	}
	return c
}

// Version returns the version of the tables in use
func (c *Classifier) Version() string {
	return c.version
}

// Categorize classifies a single rule. It never fails: rules without any
// keyword signal fall back to Tier 1 at FallbackConfidence.
func (c *Classifier) Categorize(rule model.Rule) model.RuleCategorization {
	text := strings.TrimSpace(rule.Name + " " + rule.Description)

	var counts [3]int
	var hits [3][]string
	for i, patterns := range c.tiers {
		for _, re := range patterns {
			if m := re.FindString(text); m != "" {
				counts[i]++
				hits[i] = append(hits[i], strings.ToLower(strings.TrimSpace(m)))
			}
		}
	}

	result := model.RuleCategorization{
		RuleID: rule.ID,
		MatchCounts: map[model.ComplexityLevel]int{
			model.Tier1: counts[0],
			model.Tier2: counts[1],
			model.Tier3: counts[2],
		},
		TablesVersion: c.version,
	}

	total := counts[0] + counts[1] + counts[2]
	if total == 0 {
		result.ComplexityLevel = model.Tier1
		result.Confidence = FallbackConfidence
		result.Reasoning = "no strong indicator for any tier; defaulted to tier 1 for review"
		c.applyTier1(&result, text)
		return result
	}

	// Strict > keeps the earliest (cheapest) tier on ties
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}

	result.ComplexityLevel = model.ComplexityLevel(best + 1)
	result.Confidence = float64(counts[best]) / float64(total)
	result.Reasoning = fmt.Sprintf("%s: %d of %d keyword matches (%s)",
		result.ComplexityLevel, counts[best], total, strings.Join(hits[best], ", "))

	switch result.ComplexityLevel {
	case model.Tier1:
		c.applyTier1(&result, text)
	case model.Tier2:
		result.ValidationType = model.ValidationNLP
	case model.Tier3:
		result.ValidationType = model.ValidationLLM
	}

	return result
}

// CategorizeAll classifies rules in order
func (c *Classifier) CategorizeAll(rules []model.Rule) []model.RuleCategorization {
	results := make([]model.RuleCategorization, len(rules))
	for i, r := range rules {
		results[i] = c.Categorize(r)
	}
	return results
}

func (c *Classifier) applyTier1(result *model.RuleCategorization, text string) {
	spec, vt := synthesizeCheck(text)
	result.Check = &spec
	result.ValidationType = vt
	result.ValidationPattern = spec.String()
}
