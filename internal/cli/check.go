package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustgate/internal/model"
	"github.com/ppiankov/trustgate/internal/pipeline"
	"github.com/ppiankov/trustgate/internal/ruleexec"
)

var (
	checkTitle       string
	checkProfile     string
	checkIndustry    string
	checkVoice       string
	checkQuery       string
	checkRules       string
	checkFix         bool
	checkNoCitations bool
	checkOut         string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <content>",
	Short: "Run every check over one content item",
	Long: `Check runs the full pipeline over one content item:
- QA assessment (always)
- YMYL fact verification when an industry is given
- voice consistency when a target voice is given
- citation verification for every link in the content
- compliance rules from --rules (Tier 1 executed, Tier 2/3 judged when
  a judge provider is configured, otherwise skipped)

Example:
  trustgate check post.md --title "Water Heater Repair" --industry plumbing --profile acme.yaml
  trustgate check item.yaml --voice partner --query "water heater repair denver"
  trustgate check post.md --rules rules.yaml --judge anthropic --judge-model claude-sonnet-4-5
  trustgate check post.md --fix --out report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	RootCmd.AddCommand(checkCmd)

	flags := checkCmd.Flags()
	flags.StringVar(&checkTitle, "title", "", "content title")
	flags.StringVar(&checkProfile, "profile", "", "client profile YAML")
	flags.StringVar(&checkIndustry, "industry", "", "client industry")
	flags.StringVar(&checkVoice, "voice", "", "target voice: partner, peer or professor")
	flags.StringVar(&checkQuery, "query", "", "query context for citation relevance")
	flags.StringVar(&checkRules, "rules", "", "compliance rules to evaluate (YAML/JSON)")
	flags.BoolVar(&checkFix, "fix", false, "auto-remediate when the assessment fails")
	flags.BoolVar(&checkNoCitations, "no-citations", false, "skip citation verification")
	flags.StringVar(&checkOut, "out", "", "also write the JSON report to this path")
	flags.String("judge", "", "semantic judge provider for Tier 2/3 rules (openai, anthropic, ollama)")
	flags.String("judge-model", "", "semantic judge model")
	flags.StringSlice("city", nil, "service-area city for has_cities checks (repeatable)")
	addFetchFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	item, err := readItem(cmd, args[0])
	if err != nil {
		return err
	}
	if checkTitle != "" {
		item.Title = checkTitle
	}
	if checkIndustry != "" {
		item.Industry = checkIndustry
	}
	if checkVoice != "" {
		item.TargetVoice = model.Voice(checkVoice)
	}
	if checkQuery != "" {
		item.QueryContext = checkQuery
	}
	if checkProfile != "" {
		if item.Profile, err = pipeline.LoadProfile(checkProfile); err != nil {
			return err
		}
	}

	req := pipeline.Request{Item: item, Fix: checkFix}

	var evaluator *ruleexec.Evaluator
	if checkRules != "" {
		if req.Rules, err = pipeline.LoadRules(checkRules); err != nil {
			return err
		}
		if evaluator, err = a.evaluator(); err != nil {
			return err
		}
	}

	p, err := a.pipeline(!checkNoCitations, evaluator)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, 10*time.Minute)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Checking %s...\n", args[0])
	}

	report, err := p.Check(ctx, req)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if checkOut != "" {
		if err := pipeline.WriteJSONFile(checkOut, report); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", checkOut)
		}
	}

	if err := a.renderer.Render(report); err != nil {
		return err
	}
	return verdict(report.AllPassed)
}
