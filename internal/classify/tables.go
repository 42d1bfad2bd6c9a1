package classify

// Tables holds the keyword patterns that vote for each tier. Patterns are
// regular expressions matched case-insensitively against a rule's name and
// description; each pattern counts at most once per rule.
type Tables struct {
	Version string   `yaml:"version" json:"version"`
	Tier1   []string `yaml:"tier1" json:"tier1"` // Structural / quantitative
	Tier2   []string `yaml:"tier2" json:"tier2"` // Linguistic
	Tier3   []string `yaml:"tier3" json:"tier3"` // Semantic
}

// DefaultTables returns the built-in keyword tables
func DefaultTables() Tables {
	return Tables{
		Version: "2024.1",
		Tier1: []string{
			`\bword\s*counts?\b`,
			`\b\d+\s*(?:-|to|–)?\s*\d*\s*words?\b`,
			`\bcharacters?\b`,
			`\b(?:at least|at most|minimum|maximum|no more than|no fewer than|between|exactly)\b`,
			`\bphone(?: number)?s?\b`,
			`\be-?mail(?: address)?\b`,
			`\b(?:links?|urls?|hyperlinks?)\b`,
			`\b(?:h1|h2|h3|headings?|subheadings?|headers?)\b`,
			`\b(?:bullet(?:ed)?|numbered list|bulleted list|list items?)\b`,
			`\b(?:cit(?:y|ies)|service areas?|locations?)\b`,
			`\b(?:must include|must contain|must have|required field|is required)\b`,
			`\b(?:meta description|title tag|slug|format(?:ted)?)\b`,
			`\bparagraphs?\b`,
		},
		Tier2: []string{
			`\b(?:(?:past|present|future)\s+)?tense\b`,
			`\breadab(?:le|ility)\b`,
			`\b(?:grammar|grammatical\w*)`,
			`\bpassive\b`,
			`\bactive voice\b`,
			`\bsentence (?:length|structure)\b`,
			`\bspelling\b`,
			`\bpunctuation\b`,
			`\b(?:flesch|reading level|grade level)\b`,
			`\b(?:repetiti\w*|redundan\w*|repeated)\b`,
			`\bjargon\b`,
			`\b(?:concise|wordy|wordiness)\b`,
			`\bkeyword density\b`,
			`\bclarity\b`,
		},
		Tier3: []string{
			`\btone\b`,
			`\bpersuasive\w*`,
			`\b(?:appropriate|inappropriate|appropriateness)\b`,
			`\b(?:empath\w*|compassion\w*)`,
			`\bbrand(?: voice| values)?\b`,
			`\b(?:engaging|compelling|convincing)\b`,
			`\b(?:professional|friendly|warm|authoritative)\b`,
			`\b(?:trust\w*|credib\w*)`,
			`\b(?:offensive|sensitive|respectful)\b`,
			`\b(?:accura\w+|factual\w*|mislead\w*)`,
			`\baudience\b`,
			`\b(?:emotional|emotion)\b`,
		},
	}
}
