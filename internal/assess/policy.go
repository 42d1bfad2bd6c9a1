package assess

// Policy holds the thresholds and severity weights used by the Assessor.
// Minimum thresholds are inclusive.
type Policy struct {
	// Severity weights subtracted from 100 per issue
	Tier1Weight int `yaml:"tier1_weight" json:"tier1_weight" validate:"gt=0"`
	Tier2Weight int `yaml:"tier2_weight" json:"tier2_weight" validate:"gt=0"`
	Tier3Weight int `yaml:"tier3_weight" json:"tier3_weight" validate:"gt=0"`

	PassScore int `yaml:"pass_score" json:"pass_score" validate:"gte=0,lte=100"`

	MinContentChars int `yaml:"min_content_chars" json:"min_content_chars" validate:"gte=0"`
	MinTitleChars   int `yaml:"min_title_chars" json:"min_title_chars" validate:"gte=0"`
	MinParagraphs   int `yaml:"min_paragraphs" json:"min_paragraphs" validate:"gte=0"`

	LongSentenceWords int      `yaml:"long_sentence_words" json:"long_sentence_words" validate:"gt=0"`        // Sentences strictly longer are flagged
	MaxPassiveDensity float64  `yaml:"max_passive_density" json:"max_passive_density" validate:"gte=0,lte=1"` // Flagged when strictly exceeded
	PassiveMarkers    []string `yaml:"passive_markers" json:"passive_markers"`

	// DetectRepetition adds a repetitive_words Tier-2 warning. Off by default
	// so the default score uses only the long-sentence and passive checks.
	DetectRepetition bool `yaml:"detect_repetition" json:"detect_repetition"`
}

// DefaultPolicy returns the standard 15/5/2 weighting with a pass mark of 70
func DefaultPolicy() Policy {
	return Policy{
		Tier1Weight:       15,
		Tier2Weight:       5,
		Tier3Weight:       2,
		PassScore:         70,
		MinContentChars:   100,
		MinTitleChars:     10,
		MinParagraphs:     2,
		LongSentenceWords: 40,
		MaxPassiveDensity: 0.10,
		PassiveMarkers:    []string{"was", "were", "been", "being"},
	}
}

// Score applies the weights to issue counts and clamps the result to [0,100]
func (p Policy) Score(tier1, tier2, tier3 int) int {
	score := 100 - p.Tier1Weight*tier1 - p.Tier2Weight*tier2 - p.Tier3Weight*tier3
	return clamp(score, 0, 100)
}

// Passed reports whether score meets the pass mark
func (p Policy) Passed(score int) bool {
	return score >= p.PassScore
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
