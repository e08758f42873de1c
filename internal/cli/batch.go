package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/worker"
)

var (
	concurrency  int
	filesPerSec  float64
	burst        int
	outputDir    string
	listFile     string
	formats      []string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file|dir>...",
	Short: "Validate many filings in parallel",
	Long: `Batch validates filings concurrently:
- Accepts files and directories (searched recursively for .xhtml, .html, .htm, .xml)
- Optionally reads more paths from a list file (one per line, # comments)
- Validates files in parallel with a configurable worker count and rate
- Writes one report per filing to the output directory

The exit status is 1 when any filing is invalid or could not be validated.

Example:
  ixbrlcheck batch filings/ --profile ESEF
  ixbrlcheck batch a.xhtml b.xhtml --concurrency 8 --output-dir ./reports
  ixbrlcheck batch --list filings.txt --rate 5 --burst 10 --format json,md,xlsx`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addEngineFlags(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().Float64Var(&filesPerSec, "rate", 0, "maximum files started per second per directory (0 = unlimited)")
	batchCmd.Flags().IntVar(&burst, "burst", 0, "rate limiter burst (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./ixbrlcheck-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&listFile, "list", "", "file listing filings to validate, one per line")
	batchCmd.Flags().StringSliceVar(&formats, "format", []string{"json", "md"}, "report formats to write: json, md, xlsx")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && listFile == "" {
		return fmt.Errorf("no filings given: pass files, directories or --list")
	}
	for _, f := range formats {
		switch f {
		case "json", "md", "xlsx":
		default:
			return fmt.Errorf("unknown report format %q (use json, md or xlsx)", f)
		}
	}

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Batch.Concurrency = concurrency
	}
	if cmd.Flags().Changed("rate") {
		cfg.Batch.FilesPerSecond = filesPerSec
	}
	if cmd.Flags().Changed("burst") {
		cfg.Batch.Burst = burst
	}
	log := newLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	paths, err := worker.CollectFiles(args)
	if err != nil {
		return fmt.Errorf("collect filings: %w", err)
	}
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return fmt.Errorf("read list: %w", err)
		}
		paths, err = worker.CollectFiles(append(paths, listed...))
		if err != nil {
			return fmt.Errorf("collect filings: %w", err)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no filings found")
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ixbrlcheck Batch Validation\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Filings:      %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Batch.Concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Formats:      %s\n", strings.Join(formats, ", "))
	if cfg.Batch.FilesPerSecond > 0 {
		fmt.Fprintf(os.Stderr, "  Rate:         %.1f files/s (burst %d)\n", cfg.Batch.FilesPerSecond, cfg.Batch.Burst)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, _, closeStore, err := openPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	processor := worker.NewBatchProcessor(p, cfg.Batch.Concurrency, cfg.Batch.FilesPerSecond, cfg.Batch.Burst)
	results := processor.ProcessFiles(ctx, paths)

	var validCount, invalidCount, failureCount int
	names := newNameSet()

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		report := result.Report
		base := filepath.Join(outputDir, names.unique(sanitizeFilename(result.Path)))
		if err := writeReports(p.Renderer(), report, base); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}

		if report.Valid {
			validCount++
			fmt.Fprintf(os.Stderr, "✓ %s (%s, %d warnings)\n", result.Path, report.Status(), report.Summary.Warnings)
		} else {
			invalidCount++
			fmt.Fprintf(os.Stderr, "✗ %s (%s: %d fatal, %d errors)\n", result.Path, report.Status(), report.Summary.Fatal, report.Summary.Errors)
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d filings\n", len(results))
	fmt.Fprintf(os.Stderr, "  Valid:     %d\n", validCount)
	fmt.Fprintf(os.Stderr, "  Invalid:   %d\n", invalidCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if invalidCount > 0 || failureCount > 0 {
		return fmt.Errorf("%d invalid, %d failed: %w", invalidCount, failureCount, ErrInvalid)
	}
	return nil
}

// reportRenderer is the subset of pipeline.Renderer used for batch output
type reportRenderer interface {
	RenderJSON(report *model.Report, path string) error
	RenderMarkdown(report *model.Report, path string) error
	RenderXLSX(report *model.Report, path string) error
}

// writeReports writes the selected formats next to base
func writeReports(r reportRenderer, report *model.Report, base string) error {
	for _, f := range formats {
		var err error
		switch f {
		case "json":
			err = r.RenderJSON(report, base+".json")
		case "md":
			err = r.RenderMarkdown(report, base+".md")
		case "xlsx":
			err = r.RenderXLSX(report, base+".xlsx")
		}
		if err != nil {
			return fmt.Errorf("write %s report: %w", f, err)
		}
	}
	return nil
}

// sanitizeFilename turns a filing path into a report file stem
func sanitizeFilename(path string) string {
	s := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." || s == ".." {
		s = "filing"
	}

	return s
}

// nameSet hands out unique report stems when filings share a base name
type nameSet map[string]int

func newNameSet() nameSet {
	return make(nameSet)
}

func (n nameSet) unique(stem string) string {
	n[stem]++
	if count := n[stem]; count > 1 {
		return fmt.Sprintf("%s-%d", stem, count)
	}
	return stem
}
