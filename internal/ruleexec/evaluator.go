package ruleexec

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/trustgate/internal/judge"
	"github.com/ppiankov/trustgate/internal/model"
)

// DefaultJudgeConcurrency caps simultaneous judge calls in EvaluateAll
const DefaultJudgeConcurrency = 4

// Evaluator dispatches categorized rules: Tier 1 to the Executor, Tier 2
// and 3 to the judge when one is configured
type Evaluator struct {
	exec        *Executor
	judge       judge.Provider
	concurrency int
	logger      *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil provider skips Tier-2/3 rules.
func NewEvaluator(exec *Executor, provider judge.Provider, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		exec:        exec,
		judge:       provider,
		concurrency: DefaultJudgeConcurrency,
		logger:      logger,
	}
}

// Evaluate runs one rule. It always returns an outcome; failures are
// reported as skipped outcomes with a reason.
func (ev *Evaluator) Evaluate(ctx context.Context, rule model.Rule, cat model.RuleCategorization, content string) model.CheckOutcome {
	if cat.ComplexityLevel == model.Tier1 {
		return ev.runCheck(rule, cat, content)
	}

	outcome := model.CheckOutcome{RuleID: rule.ID}
	if ev.judge == nil {
		outcome.Skipped = true
		outcome.Reason = fmt.Sprintf("%s rule needs a semantic judge; none configured", cat.ComplexityLevel)
		return outcome
	}

	verdict, err := ev.judge.Judge(ctx, judge.Request{
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		RuleDescription: rule.Description,
		Content:         content,
	})
	if err != nil {
		ev.logger.Warn("judge failed", "rule", rule.ID, "provider", ev.judge.Name(), "error", err)
		outcome.Skipped = true
		outcome.Reason = "judge error: " + err.Error()
		return outcome
	}

	outcome.Passed = verdict.Passed
	outcome.Reason = verdict.Reason
	return outcome
}

func (ev *Evaluator) runCheck(rule model.Rule, cat model.RuleCategorization, content string) model.CheckOutcome {
	spec := cat.Check
	if spec == nil {
		parsed, err := model.ParseCheckSpec(cat.ValidationPattern)
		if err != nil {
			return model.CheckOutcome{RuleID: rule.ID, Check: cat.ValidationPattern, Skipped: true, Reason: err.Error()}
		}
		spec = &parsed
	}

	outcome, err := ev.exec.Run(*spec, content)
	outcome.RuleID = rule.ID
	if err != nil {
		ev.logger.Warn("check failed", "rule", rule.ID, "check", spec.String(), "error", err)
		outcome.Skipped = true
		outcome.Reason = "check error: " + err.Error()
	}
	return outcome
}

// EvaluateAll evaluates rules[i] with cats[i], in parallel, preserving order
func (ev *Evaluator) EvaluateAll(ctx context.Context, rules []model.Rule, cats []model.RuleCategorization, content string) []model.CheckOutcome {
	n := min(len(rules), len(cats))
	outcomes := make([]model.CheckOutcome, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ev.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			outcomes[i] = ev.Evaluate(gctx, rules[i], cats[i], content)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}
