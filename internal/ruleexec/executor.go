// Package ruleexec runs classified compliance rules against content:
// Tier-1 checks as CEL expressions over measured content facts, Tier-2/3
// rules through an optional semantic judge.
package ruleexec

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/ppiankov/trustgate/internal/model"
)

// ErrNotExecutable marks checks with no machine-evaluable form
var ErrNotExecutable = errors.New("check is not executable")

var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// costLimit bounds evaluation of any single expression
const costLimit = 1000000

// Executor evaluates Tier-1 checks. Compiled programs are cached per
// expression; safe for concurrent use.
type Executor struct {
	env      *cel.Env
	cities   []city
	programs map[string]cel.Program
	mu       sync.RWMutex
}

// New creates an Executor. serviceCities feeds the city_count fact.
func New(serviceCities []string) (*Executor, error) {
	env, err := cel.NewEnv(
		cel.Variable("content", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Executor{
		env:      env,
		cities:   compileCities(serviceCities),
		programs: make(map[string]cel.Program),
	}, nil
}

// Measure computes the content facts expressions evaluate against
func (e *Executor) Measure(content string) Facts {
	return measure(content, e.cities)
}

// Expression renders a check as a CEL expression over `content`
func Expression(spec model.CheckSpec) (string, error) {
	atLeastOne := func(n int) int {
		if n < 1 {
			return 1
		}
		return n
	}

	switch spec.Kind {
	case model.CheckWordCountRange:
		return fmt.Sprintf("content.word_count >= %d && content.word_count <= %d", spec.Min, spec.Max), nil
	case model.CheckWordCountMin:
		return fmt.Sprintf("content.word_count >= %d", spec.Min), nil
	case model.CheckWordCountMax:
		return fmt.Sprintf("content.word_count <= %d", spec.Max), nil
	case model.CheckCharCountMax:
		return fmt.Sprintf("content.char_count <= %d", spec.Max), nil
	case model.CheckHasPhone:
		return "content.phone_count > 0", nil
	case model.CheckHasEmail:
		return "content.email_count > 0", nil
	case model.CheckHasLinks:
		return fmt.Sprintf("content.link_count >= %d", atLeastOne(spec.Min)), nil
	case model.CheckHasCities:
		return fmt.Sprintf("content.city_count >= %d", atLeastOne(spec.Min)), nil
	case model.CheckHasH2:
		return fmt.Sprintf("content.h2_count >= %d", atLeastOne(spec.Min)), nil
	case model.CheckHasList:
		return "content.list_count > 0", nil
	case model.CheckHasField:
		if !fieldNamePattern.MatchString(spec.Field) {
			return "", fmt.Errorf("invalid field name %q", spec.Field)
		}
		return fmt.Sprintf("%s in content.fields", strconv.Quote(spec.Field)), nil
	case model.CheckPatternMatch:
		return "", fmt.Errorf("%w: %s carries no pattern", ErrNotExecutable, spec.Kind)
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrNotExecutable, spec.Kind)
	}
}

// Run evaluates a check against content. Checks that cannot be evaluated
// come back as skipped outcomes; errors are reserved for broken expressions.
func (e *Executor) Run(spec model.CheckSpec, content string) (model.CheckOutcome, error) {
	outcome := model.CheckOutcome{Check: spec.String()}

	if spec.Kind == model.CheckHasCities && len(e.cities) == 0 {
		outcome.Skipped = true
		outcome.Reason = "no service-area cities configured"
		return outcome, nil
	}

	expr, err := Expression(spec)
	if errors.Is(err, ErrNotExecutable) {
		outcome.Skipped = true
		outcome.Reason = err.Error()
		return outcome, nil
	}
	if err != nil {
		return outcome, err
	}

	facts := e.Measure(content)
	passed, err := e.RunExpression(expr, facts)
	if err != nil {
		return outcome, err
	}

	outcome.Expression = expr
	outcome.Passed = passed
	outcome.Facts = facts.Map()
	if passed {
		outcome.Reason = "check satisfied"
	} else {
		outcome.Reason = "check not satisfied: " + expr
	}
	return outcome, nil
}

// RunExpression evaluates an arbitrary boolean expression over facts.
// Non-boolean results count as false.
func (e *Executor) RunExpression(expr string, facts Facts) (bool, error) {
	prog, err := e.program(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prog.Eval(map[string]any{"content": facts.Map()})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", expr, err)
	}

	matched, _ := out.Value().(bool)
	return matched, nil
}

func (e *Executor) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prog, ok := e.programs[expr]
	e.mu.RUnlock()
	if ok {
		return prog, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := e.env.Program(ast,
		cel.EvalOptions(cel.OptTrackState),
		cel.CostLimit(costLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	e.mu.Lock()
	e.programs[expr] = prog
	e.mu.Unlock()

	return prog, nil
}
