package validate

import (
	"context"

	"github.com/ppiankov/ixbrlcheck/internal/document"
	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/rules"
	"github.com/ppiankov/ixbrlcheck/internal/worker"
)

// RuleJob evaluates one rule against a document
type RuleJob struct {
	Rule     rules.Rule
	Document *document.Document
}

// Execute executes the rule
func (j *RuleJob) Execute(ctx context.Context) worker.Result {
	return &RuleResult{
		RuleID:   j.Rule.ID(),
		Findings: j.Rule.Evaluate(j.Document),
	}
}

// RuleResult holds the findings of one rule
type RuleResult struct {
	RuleID   string
	Findings []model.Finding
}

// GetError returns nil: rules report problems as findings
func (r *RuleResult) GetError() error {
	return nil
}
