package citation

import (
	"context"
	"testing"

	"github.com/ppiankov/trustgate/internal/model"
)

func TestAuthorityClassifier_Classify(t *testing.T) {
	classifier := NewAuthorityClassifier(model.AuthorityConfig{
		PrimaryDomains:   []string{"doi.org", "www.legislation.gov.uk"},
		SecondaryDomains: []string{"wikipedia.org", "BBB.org"},
		Domains: []model.DomainTier{
			{Domain: "nfpa.org", Tier: "primary"},
			{Domain: "example.edu", Tier: "tertiary"},
		},
		PathPatterns: []model.PathPattern{
			{Pattern: "/statute/", Tier: "primary"},
			{Pattern: "/reviews/", Tier: "secondary"},
		},
	})

	tests := []struct {
		url      string
		expected model.SourceAuthority
		desc     string
	}{
		{"https://doi.org/10.1234/example", model.AuthorityPrimary, "Primary domain exact match"},
		{"https://legislation.gov.uk/ukpga/1998/42", model.AuthorityPrimary, "www prefix stripped from config"},
		{"https://en.wikipedia.org/wiki/Water_heating", model.AuthoritySecondary, "Secondary subdomain"},
		{"https://www.bbb.org/us/co/denver", model.AuthoritySecondary, "Config domains are case-insensitive"},
		{"https://nfpa.org/codes", model.AuthorityPrimary, "Domain map"},
		{"https://example.edu/page", model.AuthorityTertiary, "Domain map overrides TLD"},
		{"https://codes.example.com/statute/42", model.AuthorityPrimary, "Path pattern"},
		{"https://plumbers.example.com/reviews/acme", model.AuthoritySecondary, "Secondary path pattern"},
		{"https://www.energy.gov/water-heaters", model.AuthorityPrimary, ".gov TLD"},
		{"https://cs.ox.ac.uk/paper", model.AuthorityPrimary, ".ac.uk TLD"},
		{"https://example.gov:8443/page", model.AuthorityPrimary, "Port ignored"},
		{"https://acme-plumbing.com/blog", model.AuthorityTertiary, "Unknown domain"},
		{"not-a-url", model.AuthorityTertiary, "No host"},
		{"", model.AuthorityTertiary, "Empty URL"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Classify(tt.url)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
			}
		})
	}
}

func TestAuthorityClassifier_InvalidPatternSkipped(t *testing.T) {
	classifier := NewAuthorityClassifier(model.AuthorityConfig{
		PathPatterns: []model.PathPattern{
			{Pattern: "([", Tier: "primary"},
			{Pattern: "/law/", Tier: "primary"},
		},
	})

	if len(classifier.pathPatterns) != 1 {
		t.Fatalf("Expected 1 compiled pattern, got %d", len(classifier.pathPatterns))
	}
	if got := classifier.Classify("https://example.com/law/cases"); got != model.AuthorityPrimary {
		t.Errorf("Expected primary, got %v", got)
	}
}

func TestParseAuthority(t *testing.T) {
	tests := map[string]model.SourceAuthority{
		"primary":    model.AuthorityPrimary,
		"1":          model.AuthorityPrimary,
		" Secondary": model.AuthoritySecondary,
		"2":          model.AuthoritySecondary,
		"tertiary":   model.AuthorityTertiary,
		"bogus":      model.AuthorityTertiary,
	}
	for in, want := range tests {
		if got := ParseAuthority(in); got != want {
			t.Errorf("ParseAuthority(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestVerifier_AuthorityAndPrimaryCount(t *testing.T) {
	doer := &fakeDoer{body: guidePage}
	v := New(Options{
		Doer: doer,
		Citation: model.CitationConfig{
			Authority: model.AuthorityConfig{PrimaryDomains: []string{"energy.gov"}},
		},
	})

	summary := v.VerifyBatch(context.Background(), []model.Citation{
		{URL: "https://www.energy.gov/guide"},
		{URL: "https://acme.example.com/guide"},
	}, "water heater repair denver", 2)

	if summary.Results[0].Authority != model.AuthorityPrimary {
		t.Errorf("Expected primary, got %v", summary.Results[0].Authority)
	}
	if summary.Results[1].Authority != model.AuthorityTertiary {
		t.Errorf("Expected tertiary, got %v", summary.Results[1].Authority)
	}
	if summary.PrimarySources != 1 {
		t.Errorf("Expected 1 primary source, got %d", summary.PrimarySources)
	}
}
