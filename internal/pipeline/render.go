package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ppiankov/trustgate/internal/model"
)

// Output formats
const (
	FormatJSON     = "json"
	FormatTerminal = "terminal"
)

// Styles holds the lipgloss styles for terminal output
type Styles struct {
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Warn    lipgloss.Style
	Muted   lipgloss.Style
	Header  lipgloss.Style
	IconOK  string
	IconBad string
}

// NewStyles returns colored styles, or plain ones when color is false
func NewStyles(color bool) Styles {
	if !color {
		return Styles{
			Pass: lipgloss.NewStyle(), Fail: lipgloss.NewStyle(), Warn: lipgloss.NewStyle(),
			Muted: lipgloss.NewStyle(), Header: lipgloss.NewStyle(),
			IconOK: "OK:", IconBad: "FAIL:",
		}
	}
	return Styles{
		Pass:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		IconOK:  "✓",
		IconBad: "✗",
	}
}

// Renderer writes results as JSON or as a terminal summary
type Renderer struct {
	w       io.Writer
	format  string
	verbose bool
	s       Styles
}

// NewRenderer creates a Renderer. Colors are enabled only when w is a TTY.
func NewRenderer(w io.Writer, format string, verbose bool) *Renderer {
	color := false
	if f, ok := w.(*os.File); ok && format != FormatJSON {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Renderer{w: w, format: format, verbose: verbose, s: NewStyles(color)}
}

// Render writes v in the configured format. Types without a terminal
// layout fall back to JSON.
func (r *Renderer) Render(v any) error {
	if r.format == FormatJSON {
		return r.JSON(v)
	}
	switch t := v.(type) {
	case *model.Report:
		r.report(t)
	case model.ContentAssessment:
		r.assessment(t)
	case model.VerificationSummary:
		r.facts(t)
	case model.ConsistencyReport:
		r.voice(t)
	case model.BatchSummary:
		r.citations(t)
	case []model.RuleCategorization:
		r.categorizations(t)
	default:
		return r.JSON(v)
	}
	return nil
}

// JSON writes v as indented JSON
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteJSONFile writes v as indented JSON to path
func WriteJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (r *Renderer) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

func (r *Renderer) verdict(ok bool, label string) string {
	if ok {
		return r.s.Pass.Render(r.s.IconOK + " " + label)
	}
	return r.s.Fail.Render(r.s.IconBad + " " + label)
}

func (r *Renderer) header(title string) {
	r.printf("%s\n", r.s.Header.Render(title))
}

func (r *Renderer) report(rep *model.Report) {
	r.header("Content check " + rep.ID)
	r.assessment(rep.Assessment)
	if rep.Facts != nil {
		r.facts(*rep.Facts)
	}
	if rep.Voice != nil {
		r.voice(*rep.Voice)
	}
	if rep.Citations != nil {
		r.citations(*rep.Citations)
	}
	if len(rep.Rules) > 0 {
		r.header("Rules")
		for _, o := range rep.Rules {
			switch {
			case o.Skipped:
				r.printf("  %s %s\n", r.s.Warn.Render("skip "+o.RuleID), r.s.Muted.Render(o.Reason))
			default:
				r.printf("  %s %s\n", r.verdict(o.Passed, o.RuleID), r.s.Muted.Render(o.Reason))
			}
		}
	}
	if rep.Remediation != nil {
		r.header("Remediation")
		if !rep.Remediation.Applied {
			r.printf("  %s\n", r.s.Muted.Render(rep.Remediation.SkippedReason))
		}
		for _, c := range rep.Remediation.Changes {
			r.printf("  - %s\n", c)
		}
	}
	r.printf("\n%s\n", r.verdict(rep.AllPassed, "overall"))
}

func (r *Renderer) assessment(a model.ContentAssessment) {
	label := fmt.Sprintf("QA score %d/100", a.QAScore)
	if a.Title != "" {
		label += " (" + a.Title + ")"
	}
	r.printf("%s\n", r.verdict(a.Passed, label))
	for _, is := range a.AllIssues() {
		style := r.s.Muted
		switch is.Severity {
		case model.SeverityCritical:
			style = r.s.Fail
		case model.SeverityWarning:
			style = r.s.Warn
		}
		r.printf("  %s %s\n", style.Render(fmt.Sprintf("[tier%d %s]", is.Tier, is.Severity)), is.Message)
	}
}

func (r *Renderer) facts(s model.VerificationSummary) {
	if !s.IsYMYL {
		r.printf("%s\n", r.s.Muted.Render("facts: "+s.Industry+" is not a YMYL industry"))
		return
	}
	r.printf("%s\n", r.verdict(s.AllVerified, fmt.Sprintf("facts %.2f%% verified (%d found)", s.VerificationScore, s.FactsFound)))
	results := s.FailedVerifications
	if r.verbose {
		results = s.VerificationResults
	}
	for _, v := range results {
		r.printf("  %s %s: %s\n", r.verdict(v.Verified, string(v.Fact.Type)), v.Fact.Value, r.s.Muted.Render(v.Reason))
	}
}

func (r *Renderer) voice(v model.ConsistencyReport) {
	r.printf("%s\n", r.verdict(v.Passed, fmt.Sprintf("voice %s %.2f/100", v.TargetVoice, v.ConsistencyScore)))
	for _, vi := range v.Violations {
		r.printf("  #%d %s %q\n", vi.SentenceIndex, r.s.Warn.Render(vi.PatternType), vi.MatchedPhrase)
		if r.verbose {
			r.printf("     %s\n", r.s.Muted.Render(vi.Suggestion))
		}
	}
}

func (r *Renderer) citations(b model.BatchSummary) {
	label := fmt.Sprintf("citations %d/%d verified (avg score %.2f, %d primary)", b.VerifiedCount, b.TotalCitations, b.AverageScore, b.PrimarySources)
	r.printf("%s\n", r.verdict(b.VerifiedCount == b.TotalCitations, label))
	for _, c := range b.Results {
		if c.Verified && !r.verbose {
			continue
		}
		issues := ""
		if c.Authority != "" {
			issues = " " + r.s.Muted.Render("["+string(c.Authority)+"]")
		}
		if len(c.Issues) > 0 {
			issues += " " + r.s.Muted.Render(strings.Join(c.Issues, ","))
		}
		r.printf("  %s%s\n", r.verdict(c.Verified, fmt.Sprintf("%3d %s", c.Score, c.Citation.URL)), issues)
	}
}

func (r *Renderer) categorizations(cats []model.RuleCategorization) {
	for _, c := range cats {
		pattern := c.ValidationPattern
		if pattern == "" {
			pattern = "-"
		}
		r.printf("%-16s %s %-8s %-22s %s\n",
			c.RuleID,
			r.s.Header.Render(c.ComplexityLevel.String()),
			c.ValidationType,
			pattern,
			r.s.Muted.Render(fmt.Sprintf("%.2f", c.Confidence)))
		if r.verbose {
			r.printf("  %s\n", r.s.Muted.Render(c.Reasoning))
		}
	}
}
