package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustgate/internal/markup"
	"github.com/ppiankov/trustgate/internal/model"
)

var (
	citationsQuery       string
	citationsFromContent bool
)

// citationsCmd represents the citations command
var citationsCmd = &cobra.Command{
	Use:   "citations <file>",
	Short: "Verify that cited URLs resolve and support the content",
	Long: `Citations fetches every cited URL concurrently and scores it:
- 40 points when the URL resolves (HTTP 200)
- 40 points when the page is relevant to the query context
- 20 points when the page contains the citation's anchor text

A citation with 60 points or more is verified. Results keep input order.

The file is a YAML/JSON list of {url, anchor_text}, or a text file with one
"URL anchor text" per line. With --from-content the file is content and its
links are verified.

Example:
  trustgate citations sources.txt --query "water heater maintenance"
  trustgate citations post.md --from-content --query "tankless water heaters" --max-concurrent 10
  trustgate citations sources.yaml --robots --rps 2 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runCitations,
}

func init() {
	RootCmd.AddCommand(citationsCmd)

	flags := citationsCmd.Flags()
	flags.StringVar(&citationsQuery, "query", "", "query context the citations should support")
	flags.BoolVar(&citationsFromContent, "from-content", false, "extract citations from a content file")
	addFetchFlags(citationsCmd)
}

// addFetchFlags registers the citation fetch flags shared with check
func addFetchFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int("max-concurrent", 5, "maximum citation fetches in flight")
	flags.Duration("timeout", 30*time.Second, "per-citation fetch timeout")
	flags.Duration("batch-timeout", 0, "deadline for the whole citation batch (0 = none)")
	flags.Duration("deadline", 10*time.Minute, "total timeout for the command")
	flags.String("user-agent", "", "HTTP User-Agent for citation fetches")
	flags.Float64("rps", 0, "per-domain requests per second (0 = unlimited)")
	flags.Bool("robots", false, "respect robots.txt")
	flags.Duration("cache-ttl", 0, "cache fetched pages for this long (0 = off)")
}

func runCitations(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	var citations []model.Citation
	query := citationsQuery
	if citationsFromContent {
		item, err := readItem(cmd, args[0])
		if err != nil {
			return err
		}
		citations = item.Citations
		if len(citations) == 0 {
			citations = markup.ExtractCitations(item.Content)
		}
		if query == "" {
			query = item.QueryContext
		}
	} else {
		citations, err = readCitations(args[0])
		if err != nil {
			return err
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Verifying %d citations (max %d in flight)...\n", len(citations), a.cfg.Citation.MaxConcurrent)
	}

	ctx, cancel := commandContext(cmd, 10*time.Minute)
	defer cancel()

	summary := a.citationVerifier().VerifyBatch(ctx, citations, query, a.cfg.Citation.MaxConcurrent)

	if err := a.renderer.Render(summary); err != nil {
		return err
	}
	return verdict(summary.VerifiedCount == summary.TotalCitations)
}
