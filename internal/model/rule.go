package model

// Rule is a natural-language compliance rule from the rule corpus
type Rule struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description" yaml:"description"`
}

// ComplexityLevel is the enforcement tier of a rule (1 = cheapest)
type ComplexityLevel int

const (
	Tier1 ComplexityLevel = 1 // Deterministic pattern match
	Tier2 ComplexityLevel = 2 // NLP heuristic
	Tier3 ComplexityLevel = 3 // Semantic / LLM judgment
)

func (l ComplexityLevel) String() string {
	switch l {
	case Tier1:
		return "tier1"
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	default:
		return "unknown"
	}
}

// ValidationType names the mechanism that enforces a rule
type ValidationType string

const (
	ValidationRegex   ValidationType = "regex"
	ValidationKeyword ValidationType = "keyword"
	ValidationCount   ValidationType = "count"
	ValidationNLP     ValidationType = "nlp"
	ValidationLLM     ValidationType = "llm"
)

// RuleCategorization is the result of one classifier pass over a rule
type RuleCategorization struct {
	RuleID            string                  `json:"rule_id"`
	ComplexityLevel   ComplexityLevel         `json:"complexity_level"`
	ValidationType    ValidationType          `json:"validation_type"`
	ValidationPattern string                  `json:"validation_pattern"`       // Legacy token, e.g. "word_count_range:10:20"
	Check             *CheckSpec              `json:"check,omitempty"`          // Typed Tier-1 check (nil for Tier 2/3)
	Confidence        float64                 `json:"confidence"`               // tier_matches / total_matches, 0.3 on fallback
	Reasoning         string                  `json:"reasoning"`                // Human-readable audit trail
	MatchCounts       map[ComplexityLevel]int `json:"match_counts,omitempty"`   // Keyword hits per tier
	TablesVersion     string                  `json:"tables_version,omitempty"` // Version of the keyword tables used
}
