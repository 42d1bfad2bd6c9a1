// Package judge asks a language model whether content satisfies a
// compliance rule that has no deterministic check.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/trustgate/internal/model"
)

// Provider judges one rule against one piece of content
type Provider interface {
	// Name returns the provider name
	Name() string

	// Judge returns the model's verdict. Transport and parse failures are errors.
	Judge(ctx context.Context, req Request) (Verdict, error)
}

// Request is one rule/content pair to judge
type Request struct {
	RuleID          string
	RuleName        string
	RuleDescription string
	Content         string
}

// Verdict is the model's decision
type Verdict struct {
	Passed     bool   `json:"passed"`
	Reason     string `json:"reason"`
	Model      string `json:"model,omitempty"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "claude", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (Ollama, proxies, tests)
	BaseURL string

	Timeout   time.Duration
	MaxTokens int
}

// ConfigFromModel converts the application config
func ConfigFromModel(c model.JudgeConfig) Config {
	return Config{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		Timeout:   c.Timeout,
		MaxTokens: c.MaxTokens,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) maxTokens() int {
	if c.MaxTokens <= 0 {
		return 500
	}
	return c.MaxTokens
}

// maxContentChars bounds the content embedded in a prompt
const maxContentChars = 8000

const systemPrompt = "You review marketing content for compliance with editorial rules. " +
	"You judge only the rule you are given and answer with JSON."

// BuildPrompt renders the judging prompt for a request
func BuildPrompt(req Request) string {
	return fmt.Sprintf(`Decide whether the content below satisfies this rule.

Rule: %s
Description: %s

Content:
"""
%s
"""

Respond with ONLY a JSON object of the form {"passed": true|false, "reason": "one sentence"}.`,
		req.RuleName, req.RuleDescription, truncate(req.Content, maxContentChars))
}

var errNoVerdict = errors.New("no verdict in model response")

// parseVerdict reads the first JSON object in a model response, tolerating
// code fences and surrounding prose
func parseVerdict(text string) (Verdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Verdict{}, fmt.Errorf("%w: %q", errNoVerdict, truncate(text, 200))
	}

	var raw struct {
		Passed *bool  `json:"passed"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return Verdict{}, fmt.Errorf("parse verdict: %w", err)
	}
	if raw.Passed == nil {
		return Verdict{}, fmt.Errorf("%w: missing \"passed\"", errNoVerdict)
	}

	return Verdict{Passed: *raw.Passed, Reason: strings.TrimSpace(raw.Reason)}, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "\n[truncated]"
}
