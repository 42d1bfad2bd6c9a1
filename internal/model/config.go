package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultBrowserUserAgent is sent with citation fetches; some sites reject bot agents
const DefaultBrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config is the complete trustgate configuration
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" mapstructure:"http"`
	Citation CitationConfig `yaml:"citation" mapstructure:"citation"`
	Content  ContentConfig  `yaml:"content" mapstructure:"content"`
	Judge    JudgeConfig    `yaml:"judge" mapstructure:"judge"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	RuleSet  string         `yaml:"ruleset,omitempty" mapstructure:"ruleset"` // Optional YAML rule-set bundle path
}

// HTTPConfig controls citation fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gt=0"`
	MaxRedirects int           `yaml:"max_redirects" mapstructure:"max_redirects" validate:"gte=0,lte=20"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	Retries      int           `yaml:"retries" mapstructure:"retries" validate:"gte=0,lte=5"` // Extra attempts on 429/5xx/transient errors
}

// CitationConfig controls batch verification and politeness
type CitationConfig struct {
	MaxConcurrent      int             `yaml:"max_concurrent" mapstructure:"max_concurrent" validate:"gte=1,lte=100"`
	BatchTimeout       time.Duration   `yaml:"batch_timeout" mapstructure:"batch_timeout" validate:"gte=0"` // 0 = no overall deadline
	RelevanceThreshold float64         `yaml:"relevance_threshold" mapstructure:"relevance_threshold" validate:"gte=0,lte=1"`
	MaxQueryTerms      int             `yaml:"max_query_terms" mapstructure:"max_query_terms" validate:"gte=1"`
	RequestsPerSecond  float64         `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"` // 0 = unlimited
	BurstSize          int             `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=0"`
	RespectRobots      bool            `yaml:"respect_robots" mapstructure:"respect_robots"`
	CacheTTL           time.Duration   `yaml:"cache_ttl" mapstructure:"cache_ttl" validate:"gte=0"`            // 0 = no page cache
	CacheDir           string          `yaml:"cache_dir,omitempty" mapstructure:"cache_dir"`                   // Adds a disk layer under the memory cache
	HostRates          []HostRate      `yaml:"host_rates,omitempty" mapstructure:"host_rates" validate:"dive"` // Per-host overrides of RequestsPerSecond
	Authority          AuthorityConfig `yaml:"authority" mapstructure:"authority"`
}

// HostRate overrides the request rate for one host; 0 means unlimited
type HostRate struct {
	Host              string  `yaml:"host" mapstructure:"host" validate:"required"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
}

// AuthorityConfig maps cited domains to authority tiers. Exact Domains
// entries win over the domain lists, which win over path patterns.
type AuthorityConfig struct {
	PrimaryDomains   []string      `yaml:"primary_domains,omitempty" mapstructure:"primary_domains"`
	SecondaryDomains []string      `yaml:"secondary_domains,omitempty" mapstructure:"secondary_domains"`
	Domains          []DomainTier  `yaml:"domains,omitempty" mapstructure:"domains" validate:"dive"`
	PathPatterns     []PathPattern `yaml:"path_patterns,omitempty" mapstructure:"path_patterns" validate:"dive"`
}

// DomainTier pins one exact host to a tier
type DomainTier struct {
	Domain string `yaml:"domain" mapstructure:"domain" validate:"required"`
	Tier   string `yaml:"tier" mapstructure:"tier" validate:"oneof=primary secondary tertiary"`
}

// PathPattern assigns a tier to URLs whose path matches Pattern
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern" validate:"required"`
	Tier    string `yaml:"tier" mapstructure:"tier" validate:"oneof=primary secondary tertiary"`
}

// ContentConfig carries client context used by Tier-1 checks
type ContentConfig struct {
	ServiceCities []string `yaml:"service_cities,omitempty" mapstructure:"service_cities"`
}

// JudgeConfig configures the optional semantic judge for Tier-2/3 rules
type JudgeConfig struct {
	Provider  string        `yaml:"provider,omitempty" mapstructure:"provider" validate:"omitempty,oneof=openai anthropic claude ollama"`
	Model     string        `yaml:"model,omitempty" mapstructure:"model"`
	APIKey    string        `yaml:"-" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format" validate:"oneof=json terminal"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// MetricsConfig controls the optional Prometheus listener
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" mapstructure:"addr"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    DefaultBrowserUserAgent,
			MaxBodyBytes: 5_000_000,
			MaxRedirects: 10,
		},
		Citation: CitationConfig{
			MaxConcurrent:      5,
			RelevanceThreshold: 0.3,
			MaxQueryTerms:      10,
			RequestsPerSecond:  0,
			BurstSize:          5,
			Authority: AuthorityConfig{
				PrimaryDomains: []string{
					"doi.org",
					"pubmed.ncbi.nlm.nih.gov",
					"who.int",
					"europa.eu",
					"legislation.gov.uk",
					"ecfr.gov",
				},
				SecondaryDomains: []string{
					"wikipedia.org",
					"britannica.com",
					"bbb.org",
					"consumerreports.org",
					"reuters.com",
					"apnews.com",
				},
			},
		},
		Judge: JudgeConfig{
			Timeout:   30 * time.Second,
			MaxTokens: 500,
		},
		Output: OutputConfig{
			Format: "terminal",
		},
	}
}

var configValidator = validator.New()

// Validate checks field bounds
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
