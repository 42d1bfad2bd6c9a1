package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/trustgate/internal/model"
	"github.com/ppiankov/trustgate/internal/pipeline"
)

// Checker defines the interface for checking one content item
type Checker interface {
	Check(ctx context.Context, req pipeline.Request) (*model.Report, error)
}

// CheckJob checks one content file
type CheckJob struct {
	Index   int
	Path    string
	Base    pipeline.Request // Fields applied to every item unless the file sets them
	Checker Checker
}

// Execute loads the file and runs the checker over it
func (j *CheckJob) Execute(ctx context.Context) Result {
	result := &CheckResult{Index: j.Index, Path: j.Path}

	item, err := pipeline.LoadItem(j.Path)
	if err != nil {
		result.Error = err
		return result
	}

	req := j.Base
	req.Item = merge(item, j.Base.Item)

	report, err := j.Checker.Check(ctx, req)
	if err != nil {
		result.Error = fmt.Errorf("%s: %w", j.Path, err)
		return result
	}
	result.Report = report
	return result
}

// merge fills the item's empty fields from base
func merge(item, base model.ContentItem) model.ContentItem {
	if item.Title == "" {
		item.Title = base.Title
	}
	if item.Industry == "" {
		item.Industry = base.Industry
	}
	if item.Profile == nil {
		item.Profile = base.Profile
	}
	if item.TargetVoice == "" {
		item.TargetVoice = base.TargetVoice
	}
	if item.QueryContext == "" {
		item.QueryContext = base.QueryContext
	}
	return item
}

// CheckResult represents the result of a check job
type CheckResult struct {
	Index  int
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks multiple content files concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessFiles checks every path. Results follow input order; files that
// never ran because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string, base pipeline.Request) []*CheckResult {
	if len(paths) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, path := range paths {
			pool.Submit(&CheckJob{
				Index:   i,
				Path:    path,
				Base:    base,
				Checker: b.checker,
			})
		}
	}()

	results := make([]*CheckResult, len(paths))
	for r := range pool.Results() {
		cr := r.(*CheckResult)
		results[cr.Index] = cr
	}

	for i, r := range results {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = &CheckResult{Index: i, Path: paths[i], Error: err}
		}
	}

	return results
}

// ProcessListFile reads paths from a file and checks them concurrently
func (b *BatchProcessor) ProcessListFile(ctx context.Context, listPath string, base pipeline.Request) ([]*CheckResult, error) {
	paths, err := ReadLines(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessFiles(ctx, paths, base), nil
}

// ReadLines reads non-empty, non-comment lines from a file, deduplicated
// and in order
func ReadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
