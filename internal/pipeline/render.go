package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// maxListed caps the findings printed in the terminal summary
const maxListed = 20

// Renderer renders reports to files and the terminal
type Renderer struct {
	includeFooter bool
	color         bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter, color bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		color:         color,
	}
}

// JSON returns the indented JSON encoding of a report
func (r *Renderer) JSON(report *model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := r.JSON(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Markdown returns the Markdown rendering of a report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# iXBRL Validation Report\n\n")
	fmt.Fprintf(&b, "**Status:** %s  \n", report.Status())
	if report.Source != "" {
		fmt.Fprintf(&b, "**Source:** %s  \n", escapeCell(report.Source))
	}
	if report.RequestedProfile != "" {
		fmt.Fprintf(&b, "**Profile:** %s (requested %q)  \n", report.Profile, report.RequestedProfile)
	} else {
		fmt.Fprintf(&b, "**Profile:** %s  \n", report.Profile)
	}
	fmt.Fprintf(&b, "**Document ID:** `%s`\n\n", report.DocumentID)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Severity | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Fatal | %d |\n", report.Summary.Fatal)
	fmt.Fprintf(&b, "| Error | %d |\n", report.Summary.Errors)
	fmt.Fprintf(&b, "| Warning | %d |\n", report.Summary.Warnings)
	fmt.Fprintf(&b, "| Info | %d |\n\n", report.Summary.Info)

	b.WriteString("## Document\n\n")
	b.WriteString("| Contexts | Units | Facts | Numeric facts | Schema refs |\n|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n\n",
		report.Stats.Contexts, report.Stats.Units, report.Stats.Facts, report.Stats.Numeric, report.Stats.SchemaRefs)

	b.WriteString("## Findings\n\n")
	if len(report.Findings) == 0 {
		b.WriteString("No findings.\n")
	} else {
		b.WriteString("| # | Severity | Rule | Subject | Message |\n|---|---|---|---|---|\n")
		for i, f := range report.Findings {
			fmt.Fprintf(&b, "| %d | %s | `%s` | %s | %s |\n",
				i+1, f.Severity, f.RuleID, escapeCell(f.Subject.String()), escapeCell(f.Message))
		}
	}

	if r.includeFooter {
		b.WriteString("\n---\n\n*Generated by ixbrlcheck. Structural and profile checks only; taxonomy schemas are not resolved.*\n")
	}

	return b.String()
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(report)), 0644)
}

// escapeCell keeps text inside a single Markdown table cell
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// Workbook builds an XLSX workbook with Summary and Findings sheets.
// The caller closes the returned file.
func (r *Renderer) Workbook(report *model.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeSummarySheet(f, report); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("summary sheet: %w", err)
	}

	if _, err := f.NewSheet("Findings"); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeFindingsSheet(f, report); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("findings sheet: %w", err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// RenderXLSX writes the report as an XLSX workbook
func (r *Renderer) RenderXLSX(report *model.Report, path string) error {
	f, err := r.Workbook(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, report *model.Report) error {
	rows := [][]any{
		{"Status", report.Status()},
		{"Valid", report.Valid},
		{"Source", report.Source},
		{"Profile", report.Profile},
		{"Requested profile", report.RequestedProfile},
		{"Document ID", report.DocumentID},
		{"Fatal", report.Summary.Fatal},
		{"Errors", report.Summary.Errors},
		{"Warnings", report.Summary.Warnings},
		{"Info", report.Summary.Info},
		{"Contexts", report.Stats.Contexts},
		{"Units", report.Stats.Units},
		{"Facts", report.Stats.Facts},
		{"Numeric facts", report.Stats.Numeric},
		{"Schema refs", report.Stats.SchemaRefs},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Summary", cell, &row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle("Summary", "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return err
	}
	return f.SetColWidth("Summary", "A", "B", 24)
}

func writeFindingsSheet(f *excelize.File, report *model.Report) error {
	header := []any{"#", "Severity", "Rule", "Subject", "Subject ID", "Concept", "Message"}
	if err := f.SetSheetRow("Findings", "A1", &header); err != nil {
		return err
	}

	for i, finding := range report.Findings {
		var id, concept string
		if finding.Subject != nil {
			id, concept = finding.Subject.ID, finding.Subject.Concept
		}
		row := []any{
			i + 1,
			finding.Severity.String(),
			finding.RuleID,
			finding.Subject.String(),
			id,
			concept,
			finding.Message,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow("Findings", cell, &row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle("Findings", "A1", "G1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth("Findings", "C", "D", 32); err != nil {
		return err
	}
	return f.SetColWidth("Findings", "G", "G", 80)
}

// summaryStyles holds the terminal styles
type summaryStyles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	valid   lipgloss.Style
	warning lipgloss.Style
	invalid lipgloss.Style
	muted   lipgloss.Style
}

func (r *Renderer) styles() summaryStyles {
	if !r.color {
		plain := lipgloss.NewStyle()
		return summaryStyles{plain, plain, plain, plain, plain, plain}
	}
	return summaryStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		valid:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		invalid: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

// Summary returns the terminal summary of a report
func (r *Renderer) Summary(report *model.Report) string {
	st := r.styles()

	status := st.valid
	switch {
	case !report.Valid:
		status = st.invalid
	case report.Summary.Warnings > 0:
		status = st.warning
	}

	source := report.Source
	if source == "" {
		source = report.DocumentID
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", st.title.Render("ixbrlcheck"), source)
	fmt.Fprintf(&b, "  %s %s\n", st.label.Render("Status:  "), status.Render(report.Status()))
	fmt.Fprintf(&b, "  %s %s\n", st.label.Render("Profile: "), report.Profile)
	fmt.Fprintf(&b, "  %s %d facts (%d numeric), %d contexts, %d units\n", st.label.Render("Document:"),
		report.Stats.Facts, report.Stats.Numeric, report.Stats.Contexts, report.Stats.Units)
	fmt.Fprintf(&b, "  %s %d fatal, %d errors, %d warnings\n", st.label.Render("Findings:"),
		report.Summary.Fatal, report.Summary.Errors, report.Summary.Warnings)

	if len(report.Findings) > 0 {
		b.WriteString("\n")
	}
	for i, f := range report.Findings {
		if i == maxListed {
			fmt.Fprintf(&b, "  %s\n", st.muted.Render(fmt.Sprintf("... and %d more", len(report.Findings)-maxListed)))
			break
		}
		sev := st.muted
		switch {
		case f.Severity >= model.SeverityError:
			sev = st.invalid
		case f.Severity == model.SeverityWarning:
			sev = st.warning
		}
		fmt.Fprintf(&b, "  %s %s %s: %s\n",
			sev.Render(fmt.Sprintf("%-7s", strings.ToUpper(f.Severity.String()))),
			f.RuleID, st.muted.Render(f.Subject.String()), f.Message)
	}

	return b.String()
}

// RenderSummary prints the terminal summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	_, _ = io.WriteString(w, r.Summary(report))
}
