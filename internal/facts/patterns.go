package facts

import "github.com/ppiankov/trustgate/internal/model"

// FactPattern describes how one fact type is extracted and where its
// source value lives in a client profile.
type FactPattern struct {
	Type     model.FactType     `yaml:"type" json:"type"`
	Severity model.FactSeverity `yaml:"severity" json:"severity"`

	// Patterns are tried in order. The first capture group is the raw value;
	// patterns without groups yield the full match.
	Patterns []string `yaml:"patterns" json:"patterns"`

	// ProfileKeys are candidate profile attributes; the first non-empty one wins.
	ProfileKeys []string `yaml:"profile_keys" json:"profile_keys"`

	// Numeric facts are compared with relative tolerance on mismatch.
	Numeric bool `yaml:"numeric,omitempty" json:"numeric,omitempty"`

	// ExcludeBefore and ExcludeAfter reject a match when the text just
	// before or after it matches. Optional.
	ExcludeBefore string `yaml:"exclude_before,omitempty" json:"exclude_before,omitempty"`
	ExcludeAfter  string `yaml:"exclude_after,omitempty" json:"exclude_after,omitempty"`
}

// contextWindow bounds the text ExcludeBefore/ExcludeAfter look at
const contextWindow = 40

// PatternSet is a versioned bundle of fact patterns plus the industries
// that require verification.
type PatternSet struct {
	Version    string        `yaml:"version" json:"version"`
	Industries []string      `yaml:"industries" json:"industries"`
	Facts      []FactPattern `yaml:"facts" json:"facts"`
}

// DefaultPatternSet returns the built-in fact patterns and YMYL industries
func DefaultPatternSet() PatternSet {
	return PatternSet{
		Version: "2024.1",
		Industries: []string{
			// Licensed trades
			"plumbing", "plumber", "electrical", "electrician", "hvac", "roofing",
			"general_contractor", "contractor", "construction", "pest_control", "home_inspection",
			// Legal
			"legal", "law", "law_firm", "attorney", "lawyer",
			// Medical
			"medical", "healthcare", "dental", "dentist", "chiropractic", "pharmacy",
			"mental_health", "veterinary",
			// Finance and insurance
			"finance", "financial", "financial_services", "accounting", "tax",
			"insurance", "mortgage", "banking", "investment", "real_estate",
		},
		Facts: []FactPattern{
			{
				Type:     model.FactLicense,
				Severity: model.FactSeverityCritical,
				Patterns: []string{
					`(?i:licen[cs]e)\s*(?:#|(?i:no\.?|number))?\s*:?\s*([A-Za-z]{0,4}-?\d[0-9A-Za-z\-]{2,})`,
					`(?i:lic\.?)\s*#\s*([A-Za-z]{0,4}-?\d[0-9A-Za-z\-]{2,})`,
				},
				ProfileKeys: []string{"license", "license_number", "contractor_license", "license_no"},
			},
			{
				Type:     model.FactInsurance,
				Severity: model.FactSeverityHigh,
				Patterns: []string{
					`(\$\s?\d[\d,]*(?:\.\d+)?(?:\s*(?i:million|m)\b)?)\s+(?:in\s+)?(?i:liability\s+)?(?i:insurance|coverage)`,
					`(?i:insured|insurance|coverage)\s+(?:up\s+)?(?:to|of|for)\s+(\$\s?\d[\d,]*(?:\.\d+)?(?:\s*(?i:million|m)\b)?)`,
				},
				ProfileKeys: []string{"insurance", "insurance_amount", "insurance_coverage", "liability_insurance"},
				Numeric:     true,
			},
			{
				Type:     model.FactCertification,
				Severity: model.FactSeverityMedium,
				Patterns: []string{
					`\b([A-Z][A-Z0-9]{1,7})[- ](?i:certified)\b`,
					`(?i:certified\s+by)\s+(?:the\s+)?([A-Z][\w&.]*(?:\s+[A-Z][\w&.]*){0,4})`,
				},
				ProfileKeys: []string{"certification", "certifications", "certified_by"},
			},
			{
				Type:     model.FactYearsExperience,
				Severity: model.FactSeverityMedium,
				Patterns: []string{
					`(?i)\b(\d{1,3})\+?\s+years?\s+(?:of\s+)?(?:experience|in\s+business|serving)`,
					`(?i)\bover\s+(\d{1,3})\s+years\b`,
					`(?i)\b(\d{1,3})\+?\s+years\b`,
				},
				ProfileKeys:  []string{"years_in_business", "years_experience", "years_of_experience", "experience_years"},
				Numeric:      true,
				ExcludeAfter: `(?i)^(?:\s+[\w-]+){0,2}\s+(?:warrant(?:y|ies)|guarantee[ds]?|old|ago)\b`,
			},
			{
				Type:     model.FactPhone,
				Severity: model.FactSeverityHigh,
				Patterns: []string{
					`(?:\+?1[-.\s]?)?(?:\(\d{3}\)|\b\d{3})[-.\s]?\d{3}[-.\s]?\d{4}\b`,
				},
				ProfileKeys:   []string{"phone", "phone_number", "business_phone", "contact_phone"},
				ExcludeBefore: `(?i)(?:#|\blic(?:en[cs]e)?\.?|\bpermit)\s*:?\s*$`,
			},
			{
				Type:     model.FactAddress,
				Severity: model.FactSeverityMedium,
				Patterns: []string{
					`\b\d{1,6}\s+(?:[A-Z][a-z]+\s+){1,4}(?:St|Street|Ave|Avenue|Rd|Road|Blvd|Boulevard|Dr|Drive|Ln|Lane|Way|Ct|Court|Pl|Place|Pkwy|Parkway)\b\.?`,
				},
				ProfileKeys: []string{"address", "street_address", "business_address"},
			},
		},
	}
}

// SeverityWeights weight each fact in the verification score
type SeverityWeights struct {
	Critical float64 `yaml:"critical" json:"critical" validate:"gt=0"`
	High     float64 `yaml:"high" json:"high" validate:"gt=0"`
	Medium   float64 `yaml:"medium" json:"medium" validate:"gt=0"`
}

// DefaultSeverityWeights returns critical=3, high=2, medium=1
func DefaultSeverityWeights() SeverityWeights {
	return SeverityWeights{Critical: 3, High: 2, Medium: 1}
}

// Weight returns the weight for a severity; unknown severities weigh 1
func (w SeverityWeights) Weight(s model.FactSeverity) float64 {
	switch s {
	case model.FactSeverityCritical:
		return w.Critical
	case model.FactSeverityHigh:
		return w.High
	case model.FactSeverityMedium:
		return w.Medium
	default:
		return 1
	}
}
