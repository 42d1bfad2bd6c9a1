package citation

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/trustgate/internal/model"
)

// AuthorityClassifier grades cited sources into authority tiers
type AuthorityClassifier struct {
	domainMap    map[string]model.SourceAuthority
	primary      []string
	secondary    []string
	pathPatterns []*compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.SourceAuthority
}

// authoritativeSuffixes are public-sector and academic TLDs
var authoritativeSuffixes = []string{".gov", ".edu", ".mil", ".gov.uk", ".ac.uk"}

// NewAuthorityClassifier builds a classifier. Invalid path patterns are skipped.
func NewAuthorityClassifier(cfg model.AuthorityConfig) *AuthorityClassifier {
	a := &AuthorityClassifier{
		domainMap: make(map[string]model.SourceAuthority, len(cfg.Domains)),
		primary:   normalizeDomains(cfg.PrimaryDomains),
		secondary: normalizeDomains(cfg.SecondaryDomains),
	}
	for _, d := range cfg.Domains {
		a.domainMap[strings.ToLower(strings.TrimSpace(d.Domain))] = ParseAuthority(d.Tier)
	}
	for _, p := range cfg.PathPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		a.pathPatterns = append(a.pathPatterns, &compiledPattern{pattern: re, tier: ParseAuthority(p.Tier)})
	}
	return a
}

// Classify grades a URL. Unparseable URLs are tertiary.
func (a *AuthorityClassifier) Classify(rawURL string) model.SourceAuthority {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return model.AuthorityTertiary
	}
	host := strings.ToLower(parsed.Hostname())

	if tier, ok := a.domainMap[host]; ok {
		return tier
	}
	if matchesDomain(host, a.primary) {
		return model.AuthorityPrimary
	}
	if matchesDomain(host, a.secondary) {
		return model.AuthoritySecondary
	}
	for _, cp := range a.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}
	for _, suffix := range authoritativeSuffixes {
		if strings.HasSuffix(host, suffix) {
			return model.AuthorityPrimary
		}
	}
	return model.AuthorityTertiary
}

// ParseAuthority reads "primary"/"1", "secondary"/"2"; anything else is tertiary
func ParseAuthority(tier string) model.SourceAuthority {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.AuthorityPrimary
	case "secondary", "2":
		return model.AuthoritySecondary
	default:
		return model.AuthorityTertiary
	}
}

// matchesDomain reports whether host is one of domains or a subdomain of one
func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, strings.TrimPrefix(d, "www."))
		}
	}
	return out
}
