package ruleexec

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/trustgate/internal/markup"
)

var (
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s]?)?(?:\(\d{3}\)|\b\d{3})[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"')\]]+`)
)

// Field detectors for has_field checks. Markdown front matter keys count too.
var fieldPatterns = map[string]*regexp.Regexp{
	"meta_description": regexp.MustCompile(`(?is)<meta[^>]+name=["']description["']|(?m)^meta_description\s*:`),
	"title_tag":        regexp.MustCompile(`(?is)<title>\s*\S|(?m)^title\s*:`),
	"slug":             regexp.MustCompile(`(?m)^slug\s*:\s*\S`),
	"alt_text":         regexp.MustCompile(`(?is)<img[^>]+alt=["'][^"']+["']|!\[[^\]]+\]\(`),
	"schema_markup":    regexp.MustCompile(`(?is)application/ld\+json|itemscope`),
}

// Facts are the measurable properties of one content item that Tier-1
// expressions evaluate against
type Facts struct {
	WordCount  int      `json:"word_count"`
	CharCount  int      `json:"char_count"`
	PhoneCount int      `json:"phone_count"`
	EmailCount int      `json:"email_count"`
	LinkCount  int      `json:"link_count"`
	CityCount  int      `json:"city_count"`
	H2Count    int      `json:"h2_count"`
	ListCount  int      `json:"list_count"`
	Fields     []string `json:"fields"`
}

// Map returns the facts keyed the way expressions reference them
func (f Facts) Map() map[string]any {
	fields := f.Fields
	if fields == nil {
		fields = []string{}
	}
	return map[string]any{
		"word_count":  f.WordCount,
		"char_count":  f.CharCount,
		"phone_count": f.PhoneCount,
		"email_count": f.EmailCount,
		"link_count":  f.LinkCount,
		"city_count":  f.CityCount,
		"h2_count":    f.H2Count,
		"list_count":  f.ListCount,
		"fields":      fields,
	}
}

type city struct {
	name string
	re   *regexp.Regexp
}

func compileCities(names []string) []city {
	var cities []city
	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		cities = append(cities, city{
			name: n,
			re:   regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`),
		})
	}
	return cities
}

func measure(content string, cities []city) Facts {
	text := markup.StripMarkup(content)
	structure := markup.Analyze(content)

	f := Facts{
		WordCount:  len(markup.Words(text)),
		CharCount:  utf8.RuneCountInString(strings.TrimSpace(text)),
		PhoneCount: len(phonePattern.FindAllString(text, -1)),
		EmailCount: len(emailPattern.FindAllString(content, -1)),
		H2Count:    structure.H2,
		ListCount:  structure.Lists,
	}

	f.LinkCount = len(markup.ExtractCitations(content))
	if bare := len(distinct(urlPattern.FindAllString(content, -1))); bare > f.LinkCount {
		f.LinkCount = bare
	}

	for _, c := range cities {
		if c.re.MatchString(text) {
			f.CityCount++
		}
	}

	for name, re := range fieldPatterns {
		if re.MatchString(content) {
			f.Fields = append(f.Fields, name)
		}
	}
	sort.Strings(f.Fields)

	return f
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
