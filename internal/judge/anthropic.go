package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider judges with the Anthropic Messages API
type AnthropicProvider struct {
	client anthropic.Client
	config Config
	model  anthropic.Model
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithRequestTimeout(config.timeout()),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	model := anthropic.ModelClaude3_5Haiku20241022
	if config.Model != "" {
		model = anthropic.Model(config.Model)
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		config: config,
		model:  model,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Judge asks Claude for a JSON verdict
func (p *AnthropicProvider) Judge(ctx context.Context, req Request) (Verdict, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: int64(p.config.maxTokens()),
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(req))),
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	verdict, err := parseVerdict(text.String())
	if err != nil {
		return Verdict{}, err
	}
	verdict.Model = string(resp.Model)
	verdict.TokensUsed = int(resp.Usage.InputTokens + resp.Usage.OutputTokens)
	return verdict, nil
}
