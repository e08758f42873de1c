package model

import (
	"fmt"
	"strings"
	"time"
)

// PeriodKind is the variant tag of a Period
type PeriodKind string

const (
	PeriodInstant  PeriodKind = "instant"
	PeriodDuration PeriodKind = "duration"
	PeriodForever  PeriodKind = "forever"
)

// Period is a reporting period declared by a context.
// Exactly one variant is populated, selected by Kind.
type Period struct {
	Kind     PeriodKind `json:"kind"`
	Instant  time.Time  `json:"-"`               // Set for PeriodInstant
	Start    time.Time  `json:"-"`               // Set for PeriodDuration
	End      time.Time  `json:"-"`               // Set for PeriodDuration
	RawStart string     `json:"start,omitempty"` // Lexical start (or instant) value
	RawEnd   string     `json:"end,omitempty"`   // Lexical end value
}

func (p Period) String() string {
	switch p.Kind {
	case PeriodInstant:
		return "instant " + p.RawStart
	case PeriodDuration:
		return fmt.Sprintf("duration %s..%s", p.RawStart, p.RawEnd)
	case PeriodForever:
		return "forever"
	default:
		return "unknown"
	}
}

// Entity identifies the reporting entity of a context
type Entity struct {
	Scheme     string `json:"scheme,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// Context is a declared reporting period referenced by facts
type Context struct {
	ID      string  `json:"id"`
	Period  *Period `json:"period,omitempty"`  // nil when missing or unresolvable
	Entity  Entity  `json:"entity"`
	Index   int     `json:"index"`             // Position among contexts in document order
	Defects Defect  `json:"defects"`           // Incomplete marker; zero for well-formed contexts
	Problem string  `json:"problem,omitempty"` // Detail for DefectInvalidPeriod
}

// Incomplete reports whether the context was recorded with defects
func (c Context) Incomplete() bool {
	return c.Defects.Incomplete()
}

// Label returns a human-readable reference for messages
func (c Context) Label() string {
	if c.ID != "" {
		return fmt.Sprintf("context %q", c.ID)
	}
	return fmt.Sprintf("context #%d", c.Index+1)
}

// dateLayouts are the xs:date and xs:dateTime lexical forms accepted in periods
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
}

// ParseDate parses an XBRL period date (xs:date or xs:dateTime)
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	// xs:date allows a bare "Z" suffix
	if len(s) == len("2006-01-02Z") && strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
