package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/ixbrlcheck/internal/rules"
	"github.com/ppiankov/ixbrlcheck/internal/validate"
)

var rulesProfile string

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule catalog and profiles",
	Long: `Rules prints every rule of the catalog in evaluation order with its default
severity, followed by the configured profiles. With --profile, it shows which
rules the profile enables and the severities it applies.

Example:
  ixbrlcheck rules
  ixbrlcheck rules --profile ESEF
  ixbrlcheck rules --profiles my-profiles.toml --profile esef-lenient`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVarP(&rulesProfile, "profile", "p", "", "show the rules of this profile")
	rulesCmd.Flags().StringVar(&profilesFile, "profiles", "", "YAML or TOML file with additional profiles")
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("profiles") {
		cfg.Engine.ProfilesFile = profilesFile
	}

	profiles, err := rules.LoadProfiles(cfg.Engine.ProfilesFile)
	if err != nil {
		return err
	}
	engine, err := validate.NewEngine(validate.Options{
		DefaultProfile: cfg.Engine.DefaultProfile,
		Profiles:       profiles,
		Parser:         cfg.Parser.Mode,
	})
	if err != nil {
		return err
	}

	var profile *rules.Profile
	if rulesProfile != "" {
		p, ok := engine.Profiles().Lookup(rulesProfile)
		if !ok {
			return fmt.Errorf("unknown profile %q (available: %s)", rulesProfile, strings.Join(engine.Profiles().Names(), ", "))
		}
		profile = p
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderRuleTable(engine.Catalog(), profile))

	if profile != nil {
		fmt.Fprintf(out, "\nProfile %s", profile.Name)
		if profile.Extends != "" {
			fmt.Fprintf(out, " (extends %s)", profile.Extends)
		}
		fmt.Fprintln(out)
		if profile.Description != "" {
			fmt.Fprintf(out, "  %s\n", profile.Description)
		}
		if len(profile.SchemaFragments) > 0 {
			fmt.Fprintf(out, "  Schema fragments: %s\n", strings.Join(profile.SchemaFragments, ", "))
		}
		for _, mc := range profile.MandatoryConcepts {
			fmt.Fprintf(out, "  Mandatory: %s (%s)\n", mc.Name, mc.Kind)
		}
		return nil
	}

	fmt.Fprintln(out, "\nProfiles:")
	for _, p := range engine.Profiles().Profiles() {
		marker := " "
		if strings.EqualFold(p.Name, engine.DefaultProfile()) {
			marker = "*"
		}
		fmt.Fprintf(out, " %s %-12s %2d rules  %s\n", marker, p.Name, len(p.Rules), p.Description)
	}
	return nil
}

// renderRuleTable renders the catalog, marking the rules a profile enables
func renderRuleTable(catalog *rules.Catalog, profile *rules.Profile) string {
	headers := []string{"#", "RULE", "SEVERITY", "DESCRIPTION"}
	if profile != nil {
		headers = append(headers, "ENABLED")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		})

	for i, def := range catalog.Definitions() {
		severity := def.Severity.String()
		row := []string{fmt.Sprintf("%d", i+1), def.ID, severity, def.Description}
		if profile != nil {
			if sev, ok := profile.SeverityFor(def.ID); ok {
				row[2] = sev.String() + " (was " + severity + ")"
			}
			enabled := "-"
			if profile.Enables(def.ID) {
				enabled = "yes"
			}
			row = append(row, enabled)
		}
		t.Row(row...)
	}

	return t.String()
}
