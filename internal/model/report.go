package model

// Report is the complete, deterministic result of validating one filing.
// It carries no timestamps so that identical input yields identical output.
type Report struct {
	DocumentID       string    `json:"document_id"`                 // UUIDv5 of the raw bytes
	Source           string    `json:"source,omitempty"`            // File name or request label
	Profile          string    `json:"profile"`                     // Profile actually applied
	RequestedProfile string    `json:"requested_profile,omitempty"` // Set when it differs from Profile
	Valid            bool      `json:"valid"`                       // No finding with severity >= error
	Findings         []Finding `json:"findings"`
	Summary          Summary   `json:"summary"`
	Stats            Stats     `json:"stats"`
}

// Summary aggregates findings by severity and rule
type Summary struct {
	Total    int            `json:"total"`
	Fatal    int            `json:"fatal"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Info     int            `json:"info"`
	ByRule   map[string]int `json:"by_rule,omitempty"`
}

// Stats describes the size of the validated document model
type Stats struct {
	Contexts   int `json:"contexts"`
	Units      int `json:"units"`
	Facts      int `json:"facts"`
	Numeric    int `json:"numeric_facts"`
	SchemaRefs int `json:"schema_refs"`
}

// Summarize counts findings by severity and rule
func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	if len(findings) > 0 {
		s.ByRule = make(map[string]int)
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityFatal:
			s.Fatal++
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		default:
			s.Info++
		}
		s.ByRule[f.RuleID]++
	}
	return s
}

// IsValid reports whether no finding reaches error severity
func IsValid(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity >= SeverityError {
			return false
		}
	}
	return true
}

// Status returns a short label for terminal and Markdown output
func (r *Report) Status() string {
	switch {
	case r.Summary.Fatal > 0:
		return "FATAL"
	case !r.Valid:
		return "INVALID"
	case r.Summary.Warnings > 0:
		return "VALID (with warnings)"
	default:
		return "VALID"
	}
}
