package model

import "fmt"

// Measure is the measurement of a unit: either a simple qualified name
// (e.g. iso4217:EUR) or a numerator/denominator pair (e.g. EUR per share).
type Measure struct {
	Simple      string `json:"simple,omitempty"`
	Numerator   string `json:"numerator,omitempty"`
	Denominator string `json:"denominator,omitempty"`
}

// IsDivide reports whether the measure is a ratio
func (m Measure) IsDivide() bool {
	return m.Simple == "" && (m.Numerator != "" || m.Denominator != "")
}

// IsZero reports whether no measure was declared at all
func (m Measure) IsZero() bool {
	return m.Simple == "" && m.Numerator == "" && m.Denominator == ""
}

// Complete reports whether the measure can be used: a simple name, or a
// divide with both sides present.
func (m Measure) Complete() bool {
	if m.Simple != "" {
		return true
	}
	return m.Numerator != "" && m.Denominator != ""
}

func (m Measure) String() string {
	if m.IsDivide() {
		return m.Numerator + "/" + m.Denominator
	}
	return m.Simple
}

// Unit is a declared measurement unit referenced by numeric facts
type Unit struct {
	ID      string  `json:"id"`
	Measure Measure `json:"measure"`
	Index   int     `json:"index"`   // Position among units in document order
	Defects Defect  `json:"defects"` // Incomplete marker; zero for well-formed units
}

// Incomplete reports whether the unit was recorded with defects
func (u Unit) Incomplete() bool {
	return u.Defects.Incomplete()
}

// Label returns a human-readable reference for messages
func (u Unit) Label() string {
	if u.ID != "" {
		return fmt.Sprintf("unit %q", u.ID)
	}
	return fmt.Sprintf("unit #%d", u.Index+1)
}
