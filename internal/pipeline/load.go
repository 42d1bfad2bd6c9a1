package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trustgate/internal/model"
)

// IsStructured reports whether path holds YAML or JSON rather than raw content
func IsStructured(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LoadItem reads a content item. YAML and JSON files are decoded as a
// ContentItem; anything else (markdown, HTML, text) is the content itself.
func LoadItem(path string) (model.ContentItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("read content: %w", err)
	}

	if !IsStructured(path) {
		return model.ContentItem{Content: string(data)}, nil
	}

	var item model.ContentItem
	if err := yaml.Unmarshal(data, &item); err != nil {
		return model.ContentItem{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return item, nil
}

// LoadProfile reads a flat client profile. Non-string scalars are kept in
// their YAML text form so "20" and 20 compare the same.
func LoadProfile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}

	profile := make(map[string]string, len(raw))
	for k, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("parse profile: %q must be a scalar", k)
		}
		profile[k] = node.Value
	}
	return profile, nil
}

// LoadRules reads a rule corpus: either a list of rules or a document
// with a top-level "rules" list
func LoadRules(path string) ([]model.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var rules []model.Rule
	if err := yaml.Unmarshal(data, &rules); err == nil {
		return numberRules(rules), nil
	}

	var doc struct {
		Rules []model.Rule `yaml:"rules"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return numberRules(doc.Rules), nil
}

// numberRules fills missing IDs with their 1-based position
func numberRules(rules []model.Rule) []model.Rule {
	for i := range rules {
		if rules[i].ID == "" {
			rules[i].ID = fmt.Sprintf("rule-%d", i+1)
		}
	}
	return rules
}

// LoadCitations reads a YAML or JSON list of citations
func LoadCitations(path string) ([]model.Citation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read citations: %w", err)
	}

	var citations []model.Citation
	if err := yaml.Unmarshal(data, &citations); err != nil {
		return nil, fmt.Errorf("parse citations: %w", err)
	}
	return citations, nil
}
