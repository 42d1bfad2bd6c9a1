package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/trustgate/internal/citation"
	"github.com/ppiankov/trustgate/internal/markup"
	"github.com/ppiankov/trustgate/internal/metrics"
	"github.com/ppiankov/trustgate/internal/model"
	"github.com/ppiankov/trustgate/internal/remediate"
	"github.com/ppiankov/trustgate/internal/ruleexec"
	"github.com/ppiankov/trustgate/internal/ruleset"
)

// Options wires the components a Pipeline runs. Only RuleSet is required;
// a nil Citations verifier skips citation checks, a nil Evaluator skips
// rule evaluation.
type Options struct {
	RuleSet       *ruleset.RuleSet
	Citations     *citation.Verifier
	Evaluator     *ruleexec.Evaluator
	Remediator    *remediate.Remediator
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	MaxConcurrent int // Citation fetches in flight; 0 uses the verifier's config
}

// Pipeline runs every checker over one content item
type Pipeline struct {
	engines       *ruleset.Engines
	versions      map[string]string
	citations     *citation.Verifier
	evaluator     *ruleexec.Evaluator
	remediator    *remediate.Remediator
	metrics       *metrics.Metrics
	logger        *slog.Logger
	maxConcurrent int
}

// Request is one content item plus what to run over it
type Request struct {
	Item  model.ContentItem
	Rules []model.Rule // Evaluated against the content when an Evaluator is set
	Fix   bool         // Remediate Tier-2 issues when no critical issue is present
}

// NewPipeline builds the engines of opts.RuleSet and wires the rest
func NewPipeline(opts Options) (*Pipeline, error) {
	rs := opts.RuleSet
	if rs == nil {
		rs = ruleset.Default()
	}
	engines, err := rs.Build()
	if err != nil {
		return nil, fmt.Errorf("build ruleset: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	remediator := opts.Remediator
	if remediator == nil {
		remediator = remediate.New(rs.Assess.LongSentenceWords)
	}

	return &Pipeline{
		engines:       engines,
		versions:      rs.Versions(),
		citations:     opts.Citations,
		evaluator:     opts.Evaluator,
		remediator:    remediator,
		metrics:       opts.Metrics,
		logger:        logger,
		maxConcurrent: opts.MaxConcurrent,
	}, nil
}

// Check runs the assessment and every check the item asks for: facts when
// it names an industry, voice when it names a target voice, citations when
// it carries or links any. With Fix set, Tier-2 style issues are remediated.
// Only configuration errors are returned.
func (p *Pipeline) Check(ctx context.Context, req Request) (*model.Report, error) {
	item := req.Item
	report := &model.Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Versions:    p.versions,
	}

	report.Assessment = p.engines.Assessor.Assess(item.Content, item.Title)
	if p.metrics != nil {
		p.metrics.ObserveAssessment(report.Assessment)
	}

	g, gctx := errgroup.WithContext(ctx)

	if item.Industry != "" {
		g.Go(func() error {
			summary, err := p.engines.Facts.VerifyContext(gctx, item.Content, item.Profile, item.Industry)
			if err != nil {
				return err
			}
			report.Facts = &summary
			return nil
		})
	}

	if item.TargetVoice != "" {
		g.Go(func() error {
			voiceReport, err := p.engines.Voice.Check(item.Content, item.TargetVoice)
			if err != nil {
				return err
			}
			report.Voice = &voiceReport
			return nil
		})
	}

	citations := item.Citations
	if len(citations) == 0 {
		citations = markup.ExtractCitations(item.Content)
	}
	if p.citations != nil && len(citations) > 0 {
		g.Go(func() error {
			summary := p.citations.VerifyBatch(gctx, citations, item.QueryContext, p.maxConcurrent)
			report.Citations = &summary
			return nil
		})
	}

	if p.evaluator != nil && len(req.Rules) > 0 {
		g.Go(func() error {
			cats := p.engines.Classifier.CategorizeAll(req.Rules)
			report.Rules = p.evaluator.EvaluateAll(gctx, req.Rules, cats, item.Content)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if req.Fix {
		if fix, ok := p.remediator.ApplyAssessment(item.Content, report.Assessment); ok {
			report.Remediation = &fix
			if fix.Applied {
				p.logger.Info("content remediated", "id", report.Assessment.ID, "changes", len(fix.Changes))
			}
		}
	}

	p.observe(report)
	report.AllPassed = allPassed(report)
	return report, nil
}

func (p *Pipeline) observe(report *model.Report) {
	if p.metrics == nil {
		return
	}
	if report.Facts != nil {
		p.metrics.ObserveFacts(*report.Facts)
	}
	if report.Voice != nil {
		p.metrics.ObserveVoice(*report.Voice)
	}
	for _, o := range report.Rules {
		p.metrics.ObserveRule(o)
	}
}

// allPassed requires every section present to pass. Skipped rules do not
// count against the item.
func allPassed(r *model.Report) bool {
	if !r.Assessment.Passed {
		return false
	}
	if r.Facts != nil && !r.Facts.AllVerified {
		return false
	}
	if r.Voice != nil && !r.Voice.Passed {
		return false
	}
	if r.Citations != nil && r.Citations.VerifiedCount < r.Citations.TotalCitations {
		return false
	}
	for _, o := range r.Rules {
		if !o.Skipped && !o.Passed {
			return false
		}
	}
	return true
}
