package citation

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "any": true, "can": true, "had": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "has": true, "have": true,
	"his": true, "how": true, "its": true, "may": true, "new": true, "now": true,
	"see": true, "who": true, "did": true, "get": true, "let": true, "say": true,
	"she": true, "too": true, "use": true, "that": true, "with": true, "this": true,
	"from": true, "they": true, "will": true, "would": true, "there": true,
	"their": true, "what": true, "about": true, "which": true, "when": true,
	"make": true, "like": true, "time": true, "just": true, "know": true,
	"take": true, "into": true, "your": true, "some": true, "could": true,
	"them": true, "than": true, "then": true, "look": true, "only": true,
	"come": true, "over": true, "also": true, "back": true, "after": true,
	"work": true, "first": true, "well": true, "even": true, "want": true,
	"because": true, "these": true, "give": true, "most": true, "been": true,
	"were": true, "does": true, "should": true, "where": true, "why": true,
	"best": true, "near": true, "more": true, "very": true, "much": true,
}

// QueryTerms extracts up to max salient terms from a query: lowercased,
// longer than two characters, not a stopword, deduplicated in first-seen order
func QueryTerms(query string, max int) []string {
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var terms []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if len([]rune(tok)) <= 2 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
		if max > 0 && len(terms) == max {
			break
		}
	}
	return terms
}
