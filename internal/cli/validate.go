package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/ixbrlcheck/internal/logger"
	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/pipeline"
	"github.com/ppiankov/ixbrlcheck/internal/store"
)

var (
	profileName  string
	parserMode   string
	profilesFile string
	outJSON      string
	outMD        string
	outXLSX      string
	noCache      bool
	noFooter     bool
	dbPath       string
	timeout      time.Duration
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a single Inline XBRL filing",
	Long: `Validate parses one Inline XBRL filing and:
- Builds the context and unit registry
- Extracts every tagged fact in document order
- Runs the rules of the selected profile concurrently
- Prints a summary and optionally writes JSON, Markdown and XLSX reports

The exit status is 1 when the report is not valid.

Example:
  ixbrlcheck validate annual-report.xhtml --profile ESEF
  ixbrlcheck validate annual-report.xhtml --json report.json --md report.md
  ixbrlcheck validate broken.html --parser html --xlsx findings.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addEngineFlags(validateCmd)

	// Output flags
	validateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	validateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	validateCmd.Flags().StringVar(&outXLSX, "xlsx", "", "output XLSX path")
	validateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall validation timeout")
}

// addEngineFlags registers the flags shared by validate, batch and serve
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "validation profile (default from config, e.g. generic or ESEF)")
	cmd.Flags().StringVar(&parserMode, "parser", "", "tree provider: xml (strict) or html (lenient)")
	cmd.Flags().StringVar(&profilesFile, "profiles", "", "YAML or TOML file with additional profiles")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().StringVar(&dbPath, "db", "", "record runs in this SQLite history database")
}

// commandConfig loads the configuration and applies the engine flags
func commandConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("parser") {
		cfg.Parser.Mode = parserMode
	}
	if flags.Changed("profiles") {
		cfg.Engine.ProfilesFile = profilesFile
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if flags.Changed("db") {
		cfg.Store.Path = dbPath
	}

	return cfg, nil
}

// openPipeline builds the pipeline and, when a history path is configured,
// opens the store and attaches it. The returned closer is never nil.
func openPipeline(cfg *model.Config, log *logger.Logger) (*pipeline.Pipeline, *store.Store, func(), error) {
	p, err := pipeline.NewPipeline(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	p.SetProfile(profileName)

	if cfg.Store.Path == "" {
		return p, nil, func() {}, nil
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open history: %w", err)
	}
	p.SetRecorder(st)
	log.Debug("recording runs in %s", st.Path())

	closer := func() {
		if err := st.Close(); err != nil {
			log.Warn("close history: %v", err)
		}
	}
	return p, st, closer, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	log.Info("Validating: %s", path)
	log.Info("Parser: %s, cache: %v", cfg.Parser.Mode, cfg.Cache.Enabled)

	p, _, closeStore, err := openPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := p.ValidateFile(ctx, path)
	if err != nil {
		return fmt.Errorf("validate failed: %w", err)
	}

	log.Info("✓ Extracted %d facts (%d contexts, %d units)", report.Stats.Facts, report.Stats.Contexts, report.Stats.Units)
	log.Info("✓ Profile %s: %d findings", report.Profile, report.Summary.Total)

	if err := p.RenderReport(os.Stdout, report, outJSON, outMD, outXLSX); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if !report.Valid {
		return fmt.Errorf("%s: %w", path, ErrInvalid)
	}
	return nil
}
