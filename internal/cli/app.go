package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trustgate/internal/cache"
	"github.com/ppiankov/trustgate/internal/citation"
	"github.com/ppiankov/trustgate/internal/judge"
	"github.com/ppiankov/trustgate/internal/logging"
	"github.com/ppiankov/trustgate/internal/metrics"
	"github.com/ppiankov/trustgate/internal/model"
	"github.com/ppiankov/trustgate/internal/pipeline"
	"github.com/ppiankov/trustgate/internal/ruleexec"
	"github.com/ppiankov/trustgate/internal/ruleset"
)

// errChecksFailed is returned under --strict when a verdict fails
var errChecksFailed = errors.New("one or more checks failed")

// app is the per-invocation wiring shared by every command
type app struct {
	cfg      *model.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	ruleset  *ruleset.RuleSet
	renderer *pipeline.Renderer
	server   *http.Server
}

// setDefaults registers every default config key so env vars and
// Unmarshal see the full tree
func setDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	for k, val := range tree {
		v.SetDefault(k, val)
	}
	_ = v.BindEnv("judge.api_key", "TRUSTGATE_JUDGE_API_KEY")
	return nil
}

// loadConfig merges defaults, config file, env and flags, then validates
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyFlags(cmd, cfg)

	if cfg.Judge.Provider != "" && cfg.Judge.APIKey == "" {
		switch strings.ToLower(cfg.Judge.Provider) {
		case "openai":
			cfg.Judge.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.Judge.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "ollama":
			if cfg.Judge.BaseURL == "" {
				cfg.Judge.BaseURL = os.Getenv("OLLAMA_BASE_URL")
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set command flags over the config
func applyFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("timeout") {
		cfg.HTTP.Timeout, _ = flags.GetDuration("timeout")
	}
	if changed("user-agent") {
		cfg.HTTP.UserAgent, _ = flags.GetString("user-agent")
	}
	if changed("max-concurrent") {
		cfg.Citation.MaxConcurrent, _ = flags.GetInt("max-concurrent")
	}
	if changed("batch-timeout") {
		cfg.Citation.BatchTimeout, _ = flags.GetDuration("batch-timeout")
	}
	if changed("rps") {
		cfg.Citation.RequestsPerSecond, _ = flags.GetFloat64("rps")
	}
	if changed("robots") {
		cfg.Citation.RespectRobots, _ = flags.GetBool("robots")
	}
	if changed("cache-ttl") {
		cfg.Citation.CacheTTL, _ = flags.GetDuration("cache-ttl")
	}
	if changed("judge") {
		cfg.Judge.Provider, _ = flags.GetString("judge")
	}
	if changed("judge-model") {
		cfg.Judge.Model, _ = flags.GetString("judge-model")
	}
	if changed("city") {
		cfg.Content.ServiceCities, _ = flags.GetStringSlice("city")
	}
}

// loadRuleSet reads --ruleset or the config's ruleset path
func loadRuleSet() (*ruleset.RuleSet, error) {
	return ruleset.Load(viper.GetString("ruleset"))
}

// newApp loads configuration and builds the shared components
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, _, err := logging.New(logging.Options{Level: logLevel, Format: logFormat})
	if logger == nil {
		return nil, err
	}
	if err != nil {
		logger.Warn("invalid log level", "error", err)
	}
	slog.SetDefault(logger)

	rs, err := ruleset.Load(cfg.RuleSet)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics.New(),
		ruleset:  rs,
		renderer: pipeline.NewRenderer(cmd.OutOrStdout(), cfg.Output.Format, cfg.Output.Verbose),
	}

	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}

	return a, nil
}

// serveMetrics exposes /metrics until close is called
func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", addr)
}

// close stops the metrics listener
func (a *app) close() {
	if a.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = a.server.Shutdown(ctx)
}

// citationVerifier builds a verifier that reports into the app's metrics
func (a *app) citationVerifier() *citation.Verifier {
	return citation.New(citation.Options{
		HTTP:     a.cfg.HTTP,
		Citation: a.cfg.Citation,
		Cache:    cache.Open(a.cfg.Citation.CacheTTL, a.cfg.Citation.CacheDir),
		Logger:   a.logger,
		OnResult: a.metrics.ObserveCitation,
	})
}

// evaluator builds the rule evaluator, with a judge when one is configured
func (a *app) evaluator() (*ruleexec.Evaluator, error) {
	exec, err := ruleexec.New(a.cfg.Content.ServiceCities)
	if err != nil {
		return nil, err
	}
	provider, err := judge.NewProvider(judge.ConfigFromModel(a.cfg.Judge))
	if err != nil {
		return nil, fmt.Errorf("judge: %w", err)
	}
	if provider != nil {
		a.logger.Debug("semantic judge enabled", "provider", provider.Name(), "model", a.cfg.Judge.Model)
	}
	return ruleexec.NewEvaluator(exec, provider, a.logger), nil
}

// pipeline wires a Pipeline; citations and rules are optional
func (a *app) pipeline(withCitations bool, evaluator *ruleexec.Evaluator) (*pipeline.Pipeline, error) {
	opts := pipeline.Options{
		RuleSet:   a.ruleset,
		Evaluator: evaluator,
		Metrics:   a.metrics,
		Logger:    a.logger,
	}
	if withCitations {
		opts.Citations = a.citationVerifier()
	}
	return pipeline.NewPipeline(opts)
}

// verdict applies --strict
func verdict(passed bool) error {
	if strict && !passed {
		return errChecksFailed
	}
	return nil
}

// commandContext bounds a command by --deadline when the command has one
func commandContext(cmd *cobra.Command, fallback time.Duration) (context.Context, context.CancelFunc) {
	d := fallback
	if f := cmd.Flags().Lookup("deadline"); f != nil && f.Changed {
		d, _ = cmd.Flags().GetDuration("deadline")
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
