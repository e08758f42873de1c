package model

import "strings"

// Defect marks a registry entry as incomplete. Defects are recorded during
// registry construction and reported by rules, never by the registry itself.
type Defect uint8

const (
	DefectMissingID      Defect = 1 << iota // No id attribute (or an empty one)
	DefectMissingPeriod                     // No period element, or no usable period variant
	DefectInvalidPeriod                     // Period dates do not parse, or start is after end
	DefectMissingMeasure                    // No measure, or an incomplete divide
)

// Has reports whether all bits of d are set
func (s Defect) Has(d Defect) bool {
	return s&d == d && d != 0
}

// Incomplete reports whether any defect is set
func (s Defect) Incomplete() bool {
	return s != 0
}

func (s Defect) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	if s.Has(DefectMissingID) {
		parts = append(parts, "missing_id")
	}
	if s.Has(DefectMissingPeriod) {
		parts = append(parts, "missing_period")
	}
	if s.Has(DefectInvalidPeriod) {
		parts = append(parts, "invalid_period")
	}
	if s.Has(DefectMissingMeasure) {
		parts = append(parts, "missing_measure")
	}
	return strings.Join(parts, ",")
}

// MarshalText renders the defect set as a comma separated list
func (s Defect) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
