package model

import (
	"fmt"
	"strconv"
	"strings"
)

// CheckKind identifies a machine-checkable Tier-1 check
type CheckKind string

const (
	CheckWordCountRange CheckKind = "word_count_range" // Min <= words <= Max
	CheckWordCountMin   CheckKind = "word_count_min"   // words >= Min
	CheckWordCountMax   CheckKind = "word_count_max"   // words <= Max
	CheckCharCountMax   CheckKind = "char_count_max"   // chars <= Max
	CheckHasPhone       CheckKind = "has_phone"
	CheckHasEmail       CheckKind = "has_email"
	CheckHasLinks       CheckKind = "has_links"  // links >= Min
	CheckHasCities      CheckKind = "has_cities" // service-area cities >= Min
	CheckHasH2          CheckKind = "has_h2"     // second-level headings >= Min
	CheckHasList        CheckKind = "has_list"
	CheckHasField       CheckKind = "has_field" // named field present (e.g. meta_description)
	CheckPatternMatch   CheckKind = "pattern_match"
)

// CheckSpec is a typed Tier-1 check. Only the parameters relevant to Kind are set.
type CheckSpec struct {
	Kind  CheckKind `json:"kind" yaml:"kind"`
	Min   int       `json:"min,omitempty" yaml:"min,omitempty"`
	Max   int       `json:"max,omitempty" yaml:"max,omitempty"`
	Field string    `json:"field,omitempty" yaml:"field,omitempty"`
}

// String renders the legacy validation_pattern token consumed by older executors
func (c CheckSpec) String() string {
	switch c.Kind {
	case CheckWordCountRange:
		return fmt.Sprintf("%s:%d:%d", c.Kind, c.Min, c.Max)
	case CheckWordCountMin, CheckHasLinks, CheckHasCities, CheckHasH2:
		return fmt.Sprintf("%s:%d", c.Kind, c.Min)
	case CheckWordCountMax, CheckCharCountMax:
		return fmt.Sprintf("%s:%d", c.Kind, c.Max)
	case CheckHasField:
		return fmt.Sprintf("%s:%s", c.Kind, c.Field)
	default:
		return string(c.Kind)
	}
}

// ParseCheckSpec parses a legacy validation_pattern token
func ParseCheckSpec(token string) (CheckSpec, error) {
	parts := strings.Split(strings.TrimSpace(token), ":")
	kind := CheckKind(parts[0])
	args := parts[1:]

	ints := func(n int) ([]int, error) {
		if len(args) != n {
			return nil, fmt.Errorf("check %q expects %d argument(s), got %d", kind, n, len(args))
		}
		out := make([]int, n)
		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("check %q argument %q: %w", kind, a, err)
			}
			out[i] = v
		}
		return out, nil
	}

	switch kind {
	case CheckWordCountRange:
		v, err := ints(2)
		if err != nil {
			return CheckSpec{}, err
		}
		if v[0] > v[1] {
			return CheckSpec{}, fmt.Errorf("check %q: min %d exceeds max %d", kind, v[0], v[1])
		}
		return CheckSpec{Kind: kind, Min: v[0], Max: v[1]}, nil
	case CheckWordCountMin, CheckHasLinks, CheckHasCities, CheckHasH2:
		v, err := ints(1)
		if err != nil {
			return CheckSpec{}, err
		}
		return CheckSpec{Kind: kind, Min: v[0]}, nil
	case CheckWordCountMax, CheckCharCountMax:
		v, err := ints(1)
		if err != nil {
			return CheckSpec{}, err
		}
		return CheckSpec{Kind: kind, Max: v[0]}, nil
	case CheckHasField:
		if len(args) != 1 || args[0] == "" {
			return CheckSpec{}, fmt.Errorf("check %q expects a field name", kind)
		}
		return CheckSpec{Kind: kind, Field: args[0]}, nil
	case CheckHasPhone, CheckHasEmail, CheckHasList, CheckPatternMatch:
		if len(args) != 0 {
			return CheckSpec{}, fmt.Errorf("check %q takes no arguments", kind)
		}
		return CheckSpec{Kind: kind}, nil
	default:
		return CheckSpec{}, fmt.Errorf("unknown check kind %q", kind)
	}
}

// CheckOutcome is the result of running a Tier-1 check or judging a Tier-2/3 rule
type CheckOutcome struct {
	RuleID     string         `json:"rule_id,omitempty"`
	Check      string         `json:"check,omitempty"`      // Legacy token of the check that ran
	Expression string         `json:"expression,omitempty"` // Compiled CEL expression (Tier 1)
	Passed     bool           `json:"passed"`
	Skipped    bool           `json:"skipped,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Facts      map[string]any `json:"facts,omitempty"` // Content facts the check was evaluated against
}
