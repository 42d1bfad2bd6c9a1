package markup

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var tokenPattern = regexp.MustCompile(`\S+`)

// grammaticalDoubles are words English legitimately doubles ("that that", "had had")
var grammaticalDoubles = map[string]bool{"that": true, "had": true, "is": true}

// Repeat is a token immediately repeated by the next token. Start and End
// span the earlier occurrence plus the whitespace after it.
type Repeat struct {
	Word  string
	Start int
	End   int
}

// AdjacentRepeats finds tokens repeated back to back, compared
// case-insensitively without surrounding punctuation. A token ending in
// punctuation closes a clause and never counts as the first half of a repeat.
// Grammatical doubles such as "that that" are not repeats.
func AdjacentRepeats(text string) []Repeat {
	var repeats []Repeat

	locs := tokenPattern.FindAllStringIndex(text, -1)
	for i := 1; i < len(locs); i++ {
		prevRaw := text[locs[i-1][0]:locs[i-1][1]]
		last, _ := utf8.DecodeLastRuneInString(prevRaw)
		if !unicode.IsLetter(last) && !unicode.IsDigit(last) {
			continue
		}

		prev := NormalizeToken(prevRaw)
		if prev == "" || grammaticalDoubles[prev] || prev != NormalizeToken(text[locs[i][0]:locs[i][1]]) {
			continue
		}

		repeats = append(repeats, Repeat{Word: prev, Start: locs[i-1][0], End: locs[i][0]})
	}

	return repeats
}

// NormalizeToken lowercases a token and trims non-alphanumeric edges
func NormalizeToken(w string) string {
	return strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}
