package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/ixbrlcheck/internal/store"
)

var (
	historyLimit    int
	historyDocument string
	historyJSON     bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded validation runs",
	Long: `History lists the runs recorded with --db (or store.path in the config),
most recent first. With --document it prints the latest stored report of
one document as JSON.

Example:
  ixbrlcheck history --db history.db
  ixbrlcheck history --db history.db --limit 50
  ixbrlcheck history --db history.db --document 3d0f7c52-6a0e-5b8e-9c2a-1f4f3b2e7d11`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&dbPath, "db", "", "SQLite history database (default from config, then ~/.ixbrlcheck/history.db)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list (0 = all)")
	historyCmd.Flags().StringVar(&historyDocument, "document", "", "print the latest report of this document id")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print runs as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	path := cfg.Store.Path
	if cmd.Flags().Changed("db") {
		path = dbPath
	}

	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = st.Close() }()

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if historyDocument != "" {
		run, err := st.Latest(cmd.Context(), historyDocument)
		if err != nil {
			return fmt.Errorf("document %s: %w", historyDocument, err)
		}
		return enc.Encode(run)
	}

	runs, err := st.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		if runs == nil {
			runs = []store.Run{}
		}
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs recorded in %s\n", st.Path())
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("WHEN", "SOURCE", "PROFILE", "STATUS", "FATAL", "ERRORS", "WARNINGS", "DOCUMENT").
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, run := range runs {
		status := "VALID"
		if !run.Valid {
			status = "INVALID"
		}
		t.Row(
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.Source,
			run.Profile,
			status,
			fmt.Sprint(run.Fatal),
			fmt.Sprint(run.Errors),
			fmt.Sprint(run.Warnings),
			run.DocumentID,
		)
	}
	fmt.Fprintln(out, t.String())
	return nil
}
