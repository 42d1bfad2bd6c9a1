package cli

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustgate/internal/model"
	"github.com/ppiankov/trustgate/internal/pipeline"
	"github.com/ppiankov/trustgate/internal/worker"
)

var (
	assessTitle       string
	assessFix         bool
	assessConcurrency int
	assessList        string
	assessWrite       bool
)

// assessEntry is one file's outcome in JSON output
type assessEntry struct {
	Path        string                   `json:"path"`
	Assessment  *model.ContentAssessment `json:"assessment,omitempty"`
	Remediation *model.Remediation       `json:"remediation,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess <file>...",
	Short: "Score content quality with the tiered validators",
	Long: `Assess runs the Tier 1 (structure), Tier 2 (readability) and Tier 3
(enhancement) validators over each file and computes a QA score.

Files are markdown, HTML or plain text; YAML/JSON files are read as content
items with their own title. Multiple files are assessed concurrently.

With --fix, content that failed only on fixable style issues (long
sentences, repeated words) is remediated and the change log printed.

Example:
  trustgate assess post.md --title "Water Heater Repair in Denver"
  trustgate assess drafts/*.md --concurrency 8 --format json
  trustgate assess --list drafts.txt --fix --write`,
	RunE: runAssess,
}

func init() {
	RootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringVar(&assessTitle, "title", "", "title applied to files that do not set one")
	assessCmd.Flags().BoolVar(&assessFix, "fix", false, "auto-remediate failing content")
	assessCmd.Flags().IntVar(&assessConcurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	assessCmd.Flags().BoolVar(&assessWrite, "write", false, "with --fix, write remediated content back to the file")
	assessCmd.Flags().StringVar(&assessList, "list", "", "file listing content paths (one per line)")
	assessCmd.Flags().Duration("deadline", 10*time.Minute, "total timeout for the batch")
}

func runAssess(cmd *cobra.Command, args []string) error {
	paths := args
	if assessList != "" {
		listed, err := worker.ReadLines(assessList)
		if err != nil {
			return fmt.Errorf("read list: %w", err)
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no content files given")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := commandContext(cmd, 10*time.Minute)
	defer cancel()

	p, err := a.pipeline(false, nil)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Assessing %d files with %d workers...\n", len(paths), assessConcurrency)
	}

	processor := worker.NewBatchProcessor(p, assessConcurrency)
	results := processor.ProcessFiles(ctx, paths, pipeline.Request{
		Item: model.ContentItem{Title: assessTitle},
		Fix:  assessFix,
	})

	passed := true
	entries := make([]assessEntry, 0, len(results))
	for _, r := range results {
		entry := assessEntry{Path: r.Path}
		if r.Error != nil {
			passed = false
			entry.Error = r.Error.Error()
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
		} else {
			entry.Assessment = &r.Report.Assessment
			entry.Remediation = r.Report.Remediation
			passed = passed && r.Report.Assessment.Passed
			if err := writeFix(r.Path, entry.Remediation); err != nil {
				return err
			}
		}
		entries = append(entries, entry)
	}

	if a.cfg.Output.Format == pipeline.FormatJSON {
		if err := a.renderer.JSON(entries); err != nil {
			return err
		}
		return verdict(passed)
	}

	for _, e := range entries {
		if e.Assessment == nil {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", e.Path)
		if err := a.renderer.Render(*e.Assessment); err != nil {
			return err
		}
		if e.Remediation != nil {
			for _, c := range e.Remediation.Changes {
				fmt.Fprintf(cmd.OutOrStdout(), "  fix: %s\n", c)
			}
			if !e.Remediation.Applied {
				fmt.Fprintf(cmd.OutOrStdout(), "  fix skipped: %s\n", e.Remediation.SkippedReason)
			}
		}
	}

	return verdict(passed)
}

// writeFix replaces a plain content file with its remediated text under --write
func writeFix(path string, fix *model.Remediation) error {
	if !assessWrite || fix == nil || !fix.Applied || pipeline.IsStructured(path) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(fix.Content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote remediated %s\n", path)
	return nil
}
