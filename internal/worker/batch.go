package worker

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// filingExtensions are the file types picked up when a directory is expanded
var filingExtensions = map[string]bool{
	".xhtml": true,
	".html":  true,
	".htm":   true,
	".xml":   true,
}

// Validator defines the interface for validating a filing on disk
type Validator interface {
	ValidateFile(ctx context.Context, path string) (*model.Report, error)
}

// FileJob represents a single filing validation job
type FileJob struct {
	Path      string
	Validator Validator
	Limiter   *Limiter // Optional
}

// Execute executes the validation job
func (j *FileJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, FileKey(j.Path)); err != nil {
			return &FileResult{Path: j.Path, Error: fmt.Errorf("rate limit: %w", err)}
		}
	}

	report, err := j.Validator.ValidateFile(ctx, j.Path)
	if err != nil {
		return &FileResult{
			Path:  j.Path,
			Error: err,
		}
	}
	return &FileResult{
		Path:   j.Path,
		Report: report,
	}
}

// FileResult represents the result of a file job
type FileResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the file result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor validates multiple filings concurrently
type BatchProcessor struct {
	validator   Validator
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor.
// A non-positive filesPerSecond disables rate limiting.
func NewBatchProcessor(validator Validator, concurrency int, filesPerSecond float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		validator:   validator,
		concurrency: concurrency,
	}
	if filesPerSecond > 0 {
		b.limiter = NewLimiter(filesPerSecond, burst)
	}
	return b
}

// ProcessFiles validates the given files concurrently.
// Results are returned in input order.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &FileJob{
			Path:      path,
			Validator: b.validator,
			Limiter:   b.limiter,
		}
	}

	results := NewPool(b.concurrency).Run(ctx, jobs)

	fileResults := make([]*FileResult, len(results))
	for i, result := range results {
		if fr, ok := result.(*FileResult); ok {
			fileResults[i] = fr
			continue
		}
		fileResults[i] = &FileResult{Path: paths[i], Error: result.GetError()}
	}

	return fileResults
}

// ProcessList reads file paths from a list file and validates them concurrently
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*FileResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessFiles(ctx, paths), nil
}

// ReadPathsFromFile reads file paths from a list file (one per line).
// Relative paths are resolved against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		// Deduplicate paths
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// CollectFiles expands directories into the filings they contain.
// Files named explicitly are kept whatever their extension; directory
// entries are filtered by extension and sorted.
func CollectFiles(inputs []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}
		if !info.IsDir() {
			add(input)
			continue
		}

		var found []string
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filingExtensions[strings.ToLower(filepath.Ext(path))] {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", input, err)
		}

		sort.Strings(found)
		for _, path := range found {
			add(path)
		}
	}

	return paths, nil
}
