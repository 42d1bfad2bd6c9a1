package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustgate/internal/pipeline"
)

var (
	factsProfile  string
	factsIndustry string
)

// factsCmd represents the facts command
var factsCmd = &cobra.Command{
	Use:   "facts <content>",
	Short: "Verify YMYL claims against a client profile",
	Long: `Facts extracts regulated-industry claims (license numbers, insurance
coverage, certifications, years in business, phone numbers, addresses)
and checks each one against the client profile.

Claims missing from the profile and claims that contradict it are reported
separately. Industries outside the YMYL list score 100 and are marked
not applicable.

Example:
  trustgate facts post.md --profile acme.yaml --industry plumbing
  cat post.md | trustgate facts - --profile acme.yaml --industry hvac`,
	Args: cobra.ExactArgs(1),
	RunE: runFacts,
}

func init() {
	RootCmd.AddCommand(factsCmd)

	factsCmd.Flags().StringVar(&factsProfile, "profile", "", "client profile YAML (flat key: value)")
	factsCmd.Flags().StringVar(&factsIndustry, "industry", "", "client industry (e.g. plumbing, legal, medical)")
}

func runFacts(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	item, err := readItem(cmd, args[0])
	if err != nil {
		return err
	}
	if factsIndustry != "" {
		item.Industry = factsIndustry
	}
	if factsProfile != "" {
		item.Profile, err = pipeline.LoadProfile(factsProfile)
		if err != nil {
			return err
		}
	}
	if item.Industry == "" {
		return fmt.Errorf("--industry is required")
	}

	engines, err := a.ruleset.Build()
	if err != nil {
		return err
	}

	summary, err := engines.Facts.VerifyContext(cmd.Context(), item.Content, item.Profile, item.Industry)
	if err != nil {
		return err
	}
	a.metrics.ObserveFacts(summary)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d facts\n", summary.FactsFound)
	}

	if err := a.renderer.Render(summary); err != nil {
		return err
	}
	return verdict(summary.AllVerified)
}
