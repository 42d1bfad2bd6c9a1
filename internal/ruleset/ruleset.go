// Package ruleset loads versioned keyword tables, scoring policy, voice
// patterns and fact patterns from a single YAML bundle.
package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trustgate/internal/assess"
	"github.com/ppiankov/trustgate/internal/classify"
	"github.com/ppiankov/trustgate/internal/facts"
	"github.com/ppiankov/trustgate/internal/model"
	"github.com/ppiankov/trustgate/internal/voice"
)

// RuleSet bundles every tunable table. Sections omitted from a file keep
// their built-in values; a list given in a file replaces the built-in list.
type RuleSet struct {
	Name        string                `yaml:"name,omitempty"`
	Classify    classify.Tables       `yaml:"classify"`
	Assess      assess.Policy         `yaml:"assess"`
	Voice       voice.PatternSet      `yaml:"voice"`
	Facts       facts.PatternSet      `yaml:"facts"`
	FactWeights facts.SeverityWeights `yaml:"fact_weights"`
}

// Engines are the components built from a RuleSet
type Engines struct {
	Classifier *classify.Classifier
	Assessor   *assess.Assessor
	Facts      *facts.Verifier
	Voice      *voice.Checker
}

// Default returns the built-in rule set
func Default() *RuleSet {
	return &RuleSet{
		Name:        "builtin",
		Classify:    classify.DefaultTables(),
		Assess:      assess.DefaultPolicy(),
		Voice:       voice.DefaultPatternSet(),
		Facts:       facts.DefaultPatternSet(),
		FactWeights: facts.DefaultSeverityWeights(),
	}
}

// Load reads a rule set file. An empty path returns the built-in set.
func Load(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}

	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return rs, nil
}

// Parse overlays YAML onto the built-in rule set and validates the result
func Parse(data []byte) (*RuleSet, error) {
	rs := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rs); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", model.ErrConfiguration, err)
	}

	if _, err := rs.Build(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Build compiles the rule set into ready-to-use components
func (rs *RuleSet) Build() (*Engines, error) {
	if err := rs.validateBounds(); err != nil {
		return nil, err
	}
	if err := rs.validateVoice(); err != nil {
		return nil, err
	}

	classifier, err := classify.New(rs.Classify)
	if err != nil {
		return nil, fmt.Errorf("%w: classify tables: %v", model.ErrConfiguration, err)
	}

	verifier, err := facts.New(rs.Facts, rs.FactWeights)
	if err != nil {
		return nil, fmt.Errorf("%w: fact patterns: %v", model.ErrConfiguration, err)
	}

	return &Engines{
		Classifier: classifier,
		Assessor:   assess.New(rs.Assess),
		Facts:      verifier,
		Voice:      voice.New(rs.Voice),
	}, nil
}

var boundsValidator = validator.New()

// validateBounds rejects non-positive weights and out-of-range thresholds
func (rs *RuleSet) validateBounds() error {
	if err := boundsValidator.Struct(rs.Assess); err != nil {
		return fmt.Errorf("%w: assess policy: %v", model.ErrConfiguration, err)
	}
	if err := boundsValidator.Struct(rs.FactWeights); err != nil {
		return fmt.Errorf("%w: fact weights: %v", model.ErrConfiguration, err)
	}
	return nil
}

// validateVoice rejects forbidden pattern types that have no phrases
func (rs *RuleSet) validateVoice() error {
	for v, types := range rs.Voice.Forbidden {
		for _, typ := range types {
			if len(rs.Voice.Phrases[typ]) == 0 {
				return fmt.Errorf("%w: voice %s forbids %q which has no phrases", model.ErrConfiguration, v, typ)
			}
		}
	}
	return nil
}

// Versions reports the version of each versioned table
func (rs *RuleSet) Versions() map[string]string {
	return map[string]string{
		"classify": rs.Classify.Version,
		"voice":    rs.Voice.Version,
		"facts":    rs.Facts.Version,
	}
}
