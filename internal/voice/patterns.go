package voice

import "github.com/ppiankov/trustgate/internal/model"

// Pattern types
const (
	EmpatheticPeer     = "empathetic_peer"
	AcademicRegister   = "academic_register"
	TentativeLanguage  = "tentative_language"
	CorporateDirective = "corporate_directive"
	CasualSlang        = "casual_slang"
	SalesyUrgency      = "salesy_urgency"
)

// PatternSet is a versioned voice configuration: which pattern types each
// voice forbids, the phrases that make up each type, and canned suggestions.
type PatternSet struct {
	Version string `yaml:"version" json:"version"`

	// Forbidden lists pattern types per voice, in scan order.
	Forbidden map[model.Voice][]string `yaml:"forbidden" json:"forbidden"`

	// Phrases are matched as lowercase substrings.
	Phrases map[string][]string `yaml:"phrases" json:"phrases"`

	// Suggestions are keyed by pattern type, then voice.
	Suggestions map[string]map[model.Voice]string `yaml:"suggestions" json:"suggestions"`
}

// DefaultPatternSet returns the built-in voice patterns
func DefaultPatternSet() PatternSet {
	return PatternSet{
		Version: "2024.1",
		Forbidden: map[model.Voice][]string{
			model.VoicePartner:   {EmpatheticPeer, AcademicRegister, TentativeLanguage},
			model.VoicePeer:      {CorporateDirective, AcademicRegister},
			model.VoiceProfessor: {CasualSlang, SalesyUrgency, EmpatheticPeer},
		},
		Phrases: map[string][]string{
			EmpatheticPeer: {
				"i understand how", "i know how frustrating", "we've all been there",
				"you're not alone", "trust me", "i feel your pain", "we get it",
			},
			AcademicRegister: {
				"furthermore", "moreover", "in conclusion", "it is evident that",
				"notwithstanding", "heretofore", "the literature suggests", "hence,", "thus,",
			},
			TentativeLanguage: {
				"perhaps", "might consider", "it seems", "possibly", "you may want to",
				"sort of", "kind of", "we think maybe", "could potentially",
			},
			CorporateDirective: {
				"you must", "it is required", "failure to comply", "mandatory",
				"per policy", "effective immediately", "all customers shall",
			},
			CasualSlang: {
				"gonna", "wanna", "awesome", "super easy", "no worries", "hey there",
				"totally", "y'all", "kinda",
			},
			SalesyUrgency: {
				"act now", "limited time", "don't miss out", "call now", "hurry",
				"today only", "best deal", "while supplies last",
			},
		},
		Suggestions: map[string]map[model.Voice]string{
			EmpatheticPeer: {
				model.VoicePartner:   "State the shared goal and next step instead of commiserating.",
				model.VoiceProfessor: "Replace personal reassurance with an explanation of the cause.",
			},
			AcademicRegister: {
				model.VoicePartner: "Use plain, direct wording a client would say out loud.",
				model.VoicePeer:    "Drop formal connectives and talk like a colleague.",
			},
			TentativeLanguage: {
				model.VoicePartner: "Make a clear recommendation instead of hedging.",
			},
			CorporateDirective: {
				model.VoicePeer: "Frame requirements as shared practice rather than orders.",
			},
			CasualSlang: {
				model.VoiceProfessor: "Use precise, neutral vocabulary.",
			},
			SalesyUrgency: {
				model.VoiceProfessor: "Remove urgency cues and let the explanation carry the call to action.",
			},
		},
	}
}

// Voices returns the voices configured in the set
func (p PatternSet) Voices() []model.Voice {
	voices := make([]model.Voice, 0, len(p.Forbidden))
	for _, v := range []model.Voice{model.VoicePartner, model.VoicePeer, model.VoiceProfessor} {
		if _, ok := p.Forbidden[v]; ok {
			voices = append(voices, v)
		}
	}
	return voices
}
