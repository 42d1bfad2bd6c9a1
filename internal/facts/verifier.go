// Package facts verifies regulated-industry claims in generated content
// against a client's source-of-truth profile.
package facts

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ppiankov/trustgate/internal/model"
)

var tracer = otel.Tracer("trustgate.facts")

var industryPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

type compiledFact struct {
	FactPattern
	res           []*regexp.Regexp
	excludeBefore *regexp.Regexp
	excludeAfter  *regexp.Regexp
}

// Verifier extracts critical facts and checks them against a profile.
// It holds compiled, read-only patterns and is safe for concurrent use.
type Verifier struct {
	version    string
	industries map[string]bool
	facts      []compiledFact
	weights    SeverityWeights
}

// New compiles a pattern set into a Verifier
func New(set PatternSet, weights SeverityWeights) (*Verifier, error) {
	v := &Verifier{
		version:    set.Version,
		industries: make(map[string]bool, len(set.Industries)),
		weights:    weights,
	}

	for _, ind := range set.Industries {
		v.industries[NormalizeIndustry(ind)] = true
	}

	for _, fp := range set.Facts {
		cf := compiledFact{FactPattern: fp}
		for _, p := range fp.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("fact %s pattern %q: %w", fp.Type, p, err)
			}
			cf.res = append(cf.res, re)
		}
		var err error
		if cf.excludeBefore, err = compileOptional(fp.ExcludeBefore); err != nil {
			return nil, fmt.Errorf("fact %s exclude_before: %w", fp.Type, err)
		}
		if cf.excludeAfter, err = compileOptional(fp.ExcludeAfter); err != nil {
			return nil, fmt.Errorf("fact %s exclude_after: %w", fp.Type, err)
		}
		v.facts = append(v.facts, cf)
	}

	return v, nil
}

// NewDefault returns a Verifier over the built-in patterns and weights
func NewDefault() *Verifier {
	v, err := New(DefaultPatternSet(), DefaultSeverityWeights())
	if err != nil {
		panic(fmt.Sprintf("default fact patterns: %v", err))
	}
	return v
}

// NormalizeIndustry lowercases an industry tag and joins words with underscores
func NormalizeIndustry(industry string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(industry), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/'
	}), "_")
}

// IsYMYL reports whether an industry requires fact verification
func (v *Verifier) IsYMYL(industry string) bool {
	return v.industries[NormalizeIndustry(industry)]
}

// Verify checks content claims for the given industry. An empty or
// malformed industry tag is a configuration error; a well-formed industry
// outside the YMYL list short-circuits to a perfect, non-applicable score.
func (v *Verifier) Verify(content string, profile map[string]string, industry string) (model.VerificationSummary, error) {
	return v.VerifyContext(context.Background(), content, profile, industry)
}

// VerifyContext is Verify with a parent context for tracing
func (v *Verifier) VerifyContext(ctx context.Context, content string, profile map[string]string, industry string) (model.VerificationSummary, error) {
	_, span := tracer.Start(ctx, "facts.Verify", trace.WithAttributes(
		attribute.String("industry", industry),
	))
	defer span.End()

	ind := NormalizeIndustry(industry)
	if !industryPattern.MatchString(ind) {
		return model.VerificationSummary{}, fmt.Errorf("%w: %q", model.ErrUnknownIndustry, industry)
	}

	summary := model.VerificationSummary{
		VerificationScore:   100,
		AllVerified:         true,
		Industry:            ind,
		FailedVerifications: []model.FactVerification{},
		VerificationResults: []model.FactVerification{},
	}

	if !v.IsYMYL(ind) {
		return summary, nil
	}
	summary.IsYMYL = true

	facts := v.Extract(content)
	summary.FactsFound = len(facts)

	var total, verified float64
	for _, f := range facts {
		result := v.verifyFact(f, profile)
		summary.VerificationResults = append(summary.VerificationResults, result)

		w := v.weights.Weight(f.Severity)
		total += w
		if result.Verified {
			verified += w
		} else {
			summary.FailedVerifications = append(summary.FailedVerifications, result)
		}
	}

	if total > 0 {
		summary.VerificationScore = math.Round(verified/total*10000) / 100
	}
	summary.AllVerified = len(summary.FailedVerifications) == 0

	span.SetAttributes(
		attribute.Int("facts_found", summary.FactsFound),
		attribute.Int("facts_failed", len(summary.FailedVerifications)),
	)

	return summary, nil
}

func compileOptional(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

// Extract returns the critical facts claimed in content, in pattern order.
// Duplicate (type, value) pairs collapse to the first occurrence, and a
// span claimed by an earlier fact type or pattern is not claimed again.
func (v *Verifier) Extract(content string) []model.CriticalFact {
	var facts []model.CriticalFact
	seen := make(map[string]bool)
	var claimed [][2]int

	overlaps := func(start, end int) bool {
		for _, c := range claimed {
			if start < c[1] && c[0] < end {
				return true
			}
		}
		return false
	}

	for _, cf := range v.facts {
		for _, re := range cf.res {
			for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
				if overlaps(loc[0], loc[1]) || cf.excluded(content, loc[0], loc[1]) {
					continue
				}
				claimed = append(claimed, [2]int{loc[0], loc[1]})

				start, end := loc[0], loc[1]
				if len(loc) >= 4 && loc[2] >= 0 {
					start, end = loc[2], loc[3]
				}

				value := strings.TrimSpace(content[start:end])
				key := string(cf.Type) + "\x00" + value
				if value == "" || seen[key] {
					continue
				}
				seen[key] = true

				facts = append(facts, model.CriticalFact{
					Type:     cf.Type,
					Value:    value,
					Severity: cf.Severity,
					Position: start,
				})
			}
		}
	}

	return facts
}

// excluded reports whether the text around content[start:end] rules the match out
func (cf *compiledFact) excluded(content string, start, end int) bool {
	if cf.excludeBefore != nil && cf.excludeBefore.MatchString(content[max(0, start-contextWindow):start]) {
		return true
	}
	if cf.excludeAfter != nil && cf.excludeAfter.MatchString(content[end:min(len(content), end+contextWindow)]) {
		return true
	}
	return false
}

func (v *Verifier) verifyFact(f model.CriticalFact, profile map[string]string) model.FactVerification {
	result := model.FactVerification{Fact: f}

	cf := v.patternFor(f.Type)
	if cf == nil {
		result.Reason = "no verification rule for fact type"
		result.Failure = model.FailureSourceDataMissing
		return result
	}

	key, source := lookup(profile, cf.ProfileKeys)
	if key == "" {
		result.Reason = "source data not available"
		result.Failure = model.FailureSourceDataMissing
		return result
	}
	result.SourceKey = key
	result.SourceValue = &source

	if f.Type == model.FactCertification {
		if certificationMatches(f.Value, source) {
			result.Verified = true
			result.Reason = "matches source"
			return result
		}
	} else if normalize(f.Type, f.Value) == normalize(f.Type, source) {
		result.Verified = true
		result.Reason = "matches source"
		return result
	}

	if cf.Numeric {
		claimed, ok1 := parseAmount(f.Value)
		actual, ok2 := parseAmount(source)
		if ok1 && ok2 && withinTolerance(claimed, actual) {
			result.Verified = true
			result.Reason = fmt.Sprintf("within %.0f%% of source (%s vs %s)", NumericTolerance*100, f.Value, source)
			return result
		}
	}

	result.Reason = fmt.Sprintf("content claims %q but source %s is %q", f.Value, key, source)
	result.Failure = model.FailureFactMismatch
	return result
}

func (v *Verifier) patternFor(t model.FactType) *compiledFact {
	for i := range v.facts {
		if v.facts[i].Type == t {
			return &v.facts[i]
		}
	}
	return nil
}

// lookup returns the first candidate key with a non-empty value
func lookup(profile map[string]string, keys []string) (string, string) {
	for _, k := range keys {
		if val := strings.TrimSpace(profile[k]); val != "" {
			return k, val
		}
	}
	return "", ""
}
