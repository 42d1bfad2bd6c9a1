package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/trustgate/internal/model"
)

var (
	wordRangePattern = regexp.MustCompile(`(?i)(?:between\s+(\d+)\s+and\s+(\d+)|(\d+)\s*(?:-|–|to)\s*(\d+))\s+words?`)
	wordMinPattern   = regexp.MustCompile(`(?i)(?:at least|minimum(?: of)?|no fewer than|more than|min\.?)\s+(\d+)\s+words?`)
	wordMaxPattern   = regexp.MustCompile(`(?i)(?:at most|maximum(?: of)?|no more than|fewer than|less than|under|max\.?)\s+(\d+)\s+words?`)
	charMaxPattern   = regexp.MustCompile(`(?i)(?:at most|maximum(?: of)?|no more than|fewer than|less than|under|max\.?|within)\s+(\d+)\s+char(?:acter)?s?`)
	countedPattern   = regexp.MustCompile(`(?i)\b(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\s+(?:different\s+|distinct\s+|unique\s+)?$`)
	phonePattern     = regexp.MustCompile(`(?i)\bphone\b`)
	emailPattern     = regexp.MustCompile(`(?i)\be-?mail\b`)
	citiesPattern    = regexp.MustCompile(`(?i)\b(?:cit(?:y|ies)|service areas?|locations?)\b`)
	h2Pattern        = regexp.MustCompile(`(?i)\b(?:h2s?|subheadings?|section headings?)\b`)
	listPattern      = regexp.MustCompile(`(?i)\b(?:bullet(?:ed)?|list)\b`)
	linkPattern      = regexp.MustCompile(`(?i)\b(?:links?|urls?|hyperlinks?|citations?)\b`)
	fieldPattern     = regexp.MustCompile(`(?i)\b(meta description|title tag|slug|alt text|schema markup)\b`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// synthesizeCheck derives a typed Tier-1 check from numeric and structural
// qualifiers in the rule text. Word and character bounds take precedence
// over presence checks.
func synthesizeCheck(text string) (model.CheckSpec, model.ValidationType) {
	if m := wordRangePattern.FindStringSubmatch(text); m != nil {
		lo, hi := atoi(m[1]), atoi(m[2])
		if m[1] == "" {
			lo, hi = atoi(m[3]), atoi(m[4])
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return model.CheckSpec{Kind: model.CheckWordCountRange, Min: lo, Max: hi}, model.ValidationCount
	}
	if m := wordMinPattern.FindStringSubmatch(text); m != nil {
		return model.CheckSpec{Kind: model.CheckWordCountMin, Min: atoi(m[1])}, model.ValidationCount
	}
	if m := wordMaxPattern.FindStringSubmatch(text); m != nil {
		return model.CheckSpec{Kind: model.CheckWordCountMax, Max: atoi(m[1])}, model.ValidationCount
	}
	if m := charMaxPattern.FindStringSubmatch(text); m != nil {
		return model.CheckSpec{Kind: model.CheckCharCountMax, Max: atoi(m[1])}, model.ValidationCount
	}

	switch {
	case phonePattern.MatchString(text):
		return model.CheckSpec{Kind: model.CheckHasPhone}, model.ValidationRegex
	case emailPattern.MatchString(text):
		return model.CheckSpec{Kind: model.CheckHasEmail}, model.ValidationRegex
	case citiesPattern.MatchString(text):
		return model.CheckSpec{Kind: model.CheckHasCities, Min: countBefore(text, citiesPattern)}, model.ValidationKeyword
	case h2Pattern.MatchString(text):
		return model.CheckSpec{Kind: model.CheckHasH2, Min: countBefore(text, h2Pattern)}, model.ValidationKeyword
	case linkPattern.MatchString(text):
		return model.CheckSpec{Kind: model.CheckHasLinks, Min: countBefore(text, linkPattern)}, model.ValidationRegex
	case listPattern.MatchString(text):
		return model.CheckSpec{Kind: model.CheckHasList}, model.ValidationKeyword
	}

	if m := fieldPattern.FindStringSubmatch(text); m != nil {
		field := strings.ReplaceAll(strings.ToLower(m[1]), " ", "_")
		return model.CheckSpec{Kind: model.CheckHasField, Field: field}, model.ValidationKeyword
	}

	return model.CheckSpec{Kind: model.CheckPatternMatch}, model.ValidationRegex
}

// countBefore returns the quantity written immediately before the noun
// matched by noun, defaulting to 1
func countBefore(text string, noun *regexp.Regexp) int {
	loc := noun.FindStringIndex(text)
	if loc == nil {
		return 1
	}

	m := countedPattern.FindStringSubmatch(text[:loc[0]])
	if m == nil {
		return 1
	}

	word := strings.ToLower(m[1])
	if n, ok := numberWords[word]; ok {
		return n
	}
	if n := atoi(word); n > 0 {
		return n
	}
	return 1
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
