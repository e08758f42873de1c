package model

import (
	"fmt"
	"strings"
)

// Severity ranks findings. Higher values are more severe.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity parses a severity name (case-insensitive)
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "fatal":
		return SeverityFatal, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText renders the severity by name
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SubjectKind classifies what a finding refers to
type SubjectKind string

const (
	SubjectFact     SubjectKind = "fact"
	SubjectContext  SubjectKind = "context"
	SubjectUnit     SubjectKind = "unit"
	SubjectConcept  SubjectKind = "concept"  // A concept that should have been reported
	SubjectDocument SubjectKind = "document" // The document as a whole
)

// Subject points at the model element that triggered a finding
type Subject struct {
	Kind    SubjectKind `json:"kind"`
	ID      string      `json:"id,omitempty"`      // Context/unit/fact id, when present
	Concept string      `json:"concept,omitempty"` // Concept name for facts and concepts
	Index   int         `json:"index"`             // Document order within Kind
}

// String describes the subject for human-readable output
func (s *Subject) String() string {
	if s == nil || s.Kind == SubjectDocument {
		return "document"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d", s.Kind, s.Index)
	if s.Concept != "" {
		b.WriteString(" " + s.Concept)
	}
	if s.ID != "" {
		fmt.Fprintf(&b, " (id %s)", s.ID)
	}
	return b.String()
}

// FactSubject builds the subject for a fact
func FactSubject(f Fact) *Subject {
	return &Subject{Kind: SubjectFact, ID: f.ID, Concept: f.Concept, Index: f.Index}
}

// ContextSubject builds the subject for a context
func ContextSubject(c Context) *Subject {
	return &Subject{Kind: SubjectContext, ID: c.ID, Index: c.Index}
}

// UnitSubject builds the subject for a unit
func UnitSubject(u Unit) *Subject {
	return &Subject{Kind: SubjectUnit, ID: u.ID, Index: u.Index}
}

// Finding is a single validation result
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Subject  *Subject `json:"subject,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.RuleID, f.Message)
}

// Finding ids recorded outside the rule catalog
const (
	FindingParseError       = "document.parse_error"
	FindingUnknownProfile   = "config.unknown_profile"
	FindingContextDuplicate = "context.duplicate_id"
	FindingUnitDuplicate    = "unit.duplicate_id"
)
