package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustgate/internal/pipeline"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <rules.yaml|rules.json>",
	Short: "Categorize compliance rules into enforcement tiers",
	Long: `Classify reads natural-language rules and assigns each one:
- an enforcement tier (1 = deterministic, 2 = heuristic, 3 = semantic)
- the mechanism that enforces it (regex, keyword, count, nlp, llm)
- a typed Tier-1 check where one applies (e.g. word_count_range:150:160)
- a confidence and a human-readable reasoning trail

Example:
  trustgate classify rules.yaml
  trustgate classify rules.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	RootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	rules, err := pipeline.LoadRules(args[0])
	if err != nil {
		return err
	}

	engines, err := a.ruleset.Build()
	if err != nil {
		return err
	}

	cats := engines.Classifier.CategorizeAll(rules)
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Classified %d rules (tables %s)\n", len(cats), engines.Classifier.Version())
	}

	return a.renderer.Render(cats)
}
