package model

// FactType classifies a regulated-industry claim
type FactType string

const (
	FactLicense         FactType = "license"
	FactInsurance       FactType = "insurance"
	FactCertification   FactType = "certification"
	FactYearsExperience FactType = "years_experience"
	FactPhone           FactType = "phone"
	FactAddress         FactType = "address"
)

// FactSeverity is the fixed severity class of a fact type
type FactSeverity string

const (
	FactSeverityCritical FactSeverity = "critical"
	FactSeverityHigh     FactSeverity = "high"
	FactSeverityMedium   FactSeverity = "medium"
)

// FailureKind distinguishes why a fact could not be verified
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureSourceDataMissing FailureKind = "source_data_missing" // Claimed in content, absent from profile
	FailureFactMismatch      FailureKind = "fact_mismatch"       // Present on both sides, values differ
)

// CriticalFact is a claim extracted from content
type CriticalFact struct {
	Type     FactType     `json:"type"`
	Value    string       `json:"value"`
	Severity FactSeverity `json:"severity"`
	Position int          `json:"position"` // Byte offset of the match in the content
}

// FactVerification is the verdict for one extracted fact
type FactVerification struct {
	Fact        CriticalFact `json:"fact"`
	Verified    bool         `json:"verified"`
	SourceValue *string      `json:"source_value"`
	SourceKey   string       `json:"source_key,omitempty"`
	Reason      string       `json:"reason"`
	Failure     FailureKind  `json:"failure,omitempty"`
}

// VerificationSummary is the aggregate YMYL verdict for a content item
type VerificationSummary struct {
	VerificationScore   float64            `json:"verification_score"`
	AllVerified         bool               `json:"all_verified"`
	IsYMYL              bool               `json:"is_ymyl"`
	Industry            string             `json:"industry"`
	FactsFound          int                `json:"facts_found"`
	FailedVerifications []FactVerification `json:"failed_verifications"`
	VerificationResults []FactVerification `json:"verification_results"`
}
