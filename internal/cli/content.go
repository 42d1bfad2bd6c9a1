package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustgate/internal/model"
	"github.com/ppiankov/trustgate/internal/pipeline"
	"github.com/ppiankov/trustgate/internal/worker"
)

// readItem loads a content argument; "-" reads raw content from stdin
func readItem(cmd *cobra.Command, path string) (model.ContentItem, error) {
	if path != "-" {
		return pipeline.LoadItem(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("read stdin: %w", err)
	}
	return model.ContentItem{Content: string(data)}, nil
}

// readCitations loads a citation list. YAML/JSON files hold citation
// objects; other files list one "URL [anchor text]" per line.
func readCitations(path string) ([]model.Citation, error) {
	if pipeline.IsStructured(path) {
		return pipeline.LoadCitations(path)
	}

	lines, err := worker.ReadLines(path)
	if err != nil {
		return nil, err
	}

	citations := make([]model.Citation, 0, len(lines))
	for _, line := range lines {
		url, anchor, _ := strings.Cut(line, " ")
		citations = append(citations, model.Citation{
			URL:        url,
			AnchorText: strings.TrimSpace(anchor),
		})
	}
	return citations, nil
}
