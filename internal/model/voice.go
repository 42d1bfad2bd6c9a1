package model

// Voice is a target communication persona
type Voice string

const (
	VoicePartner   Voice = "partner"
	VoicePeer      Voice = "peer"
	VoiceProfessor Voice = "professor"
)

// VoiceViolation is one sentence that drifts into a forbidden persona
type VoiceViolation struct {
	SentenceIndex int    `json:"sentence_index"`
	Excerpt       string `json:"excerpt"`
	PatternType   string `json:"pattern_type"`
	MatchedPhrase string `json:"matched_phrase"`
	Suggestion    string `json:"suggestion"`
}

// ConsistencyReport is the voice checker's verdict
type ConsistencyReport struct {
	TargetVoice      Voice            `json:"target_voice"`
	ConsistencyScore float64          `json:"consistency_score"`
	Violations       []VoiceViolation `json:"violations"`
	Passed           bool             `json:"passed"`
	TotalSentences   int              `json:"total_sentences"`
	PatternCounts    map[string]int   `json:"pattern_counts,omitempty"`
	PatternsVersion  string           `json:"patterns_version,omitempty"`
}
