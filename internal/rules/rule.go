// Package rules holds the validation rule catalog and the profiles that
// select rule subsets for a reporting regime.
package rules

import (
	"fmt"

	"github.com/ppiankov/ixbrlcheck/internal/document"
	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// Rule ids, in catalog registration order
const (
	RuleSchemaMissing         = "taxonomy.schema_missing"
	RuleMandatoryMissing      = "mandatory.element_missing"
	RuleContextMissingID      = "context.missing_id"
	RuleContextMissingPeriod  = "context.missing_period"
	RuleContextInvalidPeriod  = "context.invalid_period"
	RuleUnitMissingID         = "unit.missing_id"
	RuleUnitMissingMeasure    = "unit.missing_measure"
	RuleFactMissingName       = "fact.missing_name"
	RuleFactMissingContextRef = "fact.missing_context_ref"
	RuleFactMissingUnitRef    = "fact.missing_unit_ref"
	RuleFactInvalidDecimals   = "fact.invalid_decimals"
	RuleFactInvalidSign       = "fact.invalid_sign"
)

// Rule is a single, independent check over a document model.
// Evaluate must be pure and return findings in subject document order.
type Rule interface {
	ID() string
	Description() string
	Severity() model.Severity
	Evaluate(doc *document.Document) []model.Finding
}

// meta carries the identity shared by every rule implementation
type meta struct {
	id          string
	description string
	severity    model.Severity
}

func (m meta) ID() string {
	return m.id
}

func (m meta) Description() string {
	return m.description
}

func (m meta) Severity() model.Severity {
	return m.severity
}

// finding builds a finding attributed to the rule
func (m meta) finding(subject *model.Subject, format string, args ...any) model.Finding {
	return model.Finding{
		RuleID:   m.id,
		Severity: m.severity,
		Message:  fmt.Sprintf(format, args...),
		Subject:  subject,
	}
}

// overridden replaces the severity of a rule and its findings
type overridden struct {
	Rule
	severity model.Severity
}

func (o overridden) Severity() model.Severity {
	return o.severity
}

func (o overridden) Evaluate(doc *document.Document) []model.Finding {
	findings := o.Rule.Evaluate(doc)
	for i := range findings {
		findings[i].Severity = o.severity
	}
	return findings
}
