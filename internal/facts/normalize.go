package facts

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/trustgate/internal/model"
)

// NumericTolerance is the relative difference accepted for numeric facts
const NumericTolerance = 0.10

var (
	separatorPattern = regexp.MustCompile(`[\s\-_.,#:/()$]+`)
	nonDigitPattern  = regexp.MustCompile(`\D`)
	amountPattern    = regexp.MustCompile(`(?i)^\$?\s*([\d,]*\.?\d+)\s*(million|mil|m|thousand|k)?\b`)
)

var streetSuffixes = map[string]string{
	"STREET": "ST", "AVENUE": "AVE", "ROAD": "RD", "BOULEVARD": "BLVD", "DRIVE": "DR",
	"LANE": "LN", "COURT": "CT", "PLACE": "PL", "PARKWAY": "PKWY",
}

// normalize canonicalizes a value for exact comparison: uppercase with
// separators and currency marks removed
func normalize(t model.FactType, value string) string {
	v := strings.ToUpper(strings.TrimSpace(value))

	switch t {
	case model.FactPhone:
		digits := nonDigitPattern.ReplaceAllString(v, "")
		if len(digits) == 11 && strings.HasPrefix(digits, "1") {
			digits = digits[1:]
		}
		return digits
	case model.FactAddress:
		// Compare the street line only
		if i := strings.Index(v, ","); i >= 0 {
			v = v[:i]
		}
		words := strings.Fields(separatorPattern.ReplaceAllString(v, " "))
		for i, w := range words {
			if short, ok := streetSuffixes[w]; ok {
				words[i] = short
			}
		}
		return strings.Join(words, "")
	}

	return separatorPattern.ReplaceAllString(v, "")
}

// parseAmount reads numbers like "20", "$2,000,000", "2 million" or "500k"
func parseAmount(value string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, false
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "million", "mil", "m":
		n *= 1_000_000
	case "thousand", "k":
		n *= 1_000
	}

	return n, true
}

// withinTolerance reports whether claimed is within NumericTolerance of source
func withinTolerance(claimed, source float64) bool {
	if source == 0 {
		return claimed == 0
	}
	diff := claimed - source
	if diff < 0 {
		diff = -diff
	}
	if source < 0 {
		source = -source
	}
	return diff/source <= NumericTolerance
}

// certificationMatches compares against every entry of a comma or
// semicolon separated source list
func certificationMatches(claimed, source string) bool {
	want := normalize(model.FactCertification, claimed)
	for _, part := range strings.FieldsFunc(source, func(r rune) bool { return r == ',' || r == ';' }) {
		if normalize(model.FactCertification, part) == want {
			return true
		}
	}
	return false
}
