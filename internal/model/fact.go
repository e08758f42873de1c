package model

import "fmt"

// ItemKind is the tagged variant of an inline XBRL reportable item.
// It is resolved once at extraction time from the element name.
type ItemKind int

const (
	ItemNonNumeric  ItemKind = iota // ix:nonNumeric
	ItemNonFraction                 // ix:nonFraction
	ItemFraction                    // ix:fraction
)

func (k ItemKind) String() string {
	switch k {
	case ItemNonNumeric:
		return "nonNumeric"
	case ItemNonFraction:
		return "nonFraction"
	case ItemFraction:
		return "fraction"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// IsNumeric reports whether items of this kind carry a unit
func (k ItemKind) IsNumeric() bool {
	switch k {
	case ItemNonFraction, ItemFraction:
		return true
	default:
		return false
	}
}

// MarshalText renders the kind by its element name
func (k ItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Fact is a single reported value.
// An absent attribute is stored as the empty string; use the Has* methods
// rather than comparing fields directly.
type Fact struct {
	Kind       ItemKind `json:"kind"`
	Concept    string   `json:"concept,omitempty"`     // name attribute (prefix:local)
	Value      string   `json:"value,omitempty"`       // Text content
	ContextRef string   `json:"context_ref,omitempty"` // contextRef attribute
	UnitRef    string   `json:"unit_ref,omitempty"`    // unitRef attribute, numeric only
	Decimals   string   `json:"decimals,omitempty"`    // Numeric only
	Sign       string   `json:"sign,omitempty"`        // Numeric only
	Scale      string   `json:"scale,omitempty"`       // Numeric only
	Format     string   `json:"format,omitempty"`      // ixt transformation, numeric only
	ID         string   `json:"id,omitempty"`          // Element id attribute
	Nil        bool     `json:"nil,omitempty"`         // xsi:nil="true"
	Index      int      `json:"index"`                 // Position among facts in document order
}

// IsNumeric reports whether the fact is a numeric item
func (f Fact) IsNumeric() bool {
	return f.Kind.IsNumeric()
}

// HasConcept reports whether the name attribute was present and non-empty
func (f Fact) HasConcept() bool {
	return f.Concept != ""
}

// HasContextRef reports whether the contextRef attribute was present and non-empty
func (f Fact) HasContextRef() bool {
	return f.ContextRef != ""
}

// HasUnitRef reports whether the unitRef attribute was present and non-empty
func (f Fact) HasUnitRef() bool {
	return f.UnitRef != ""
}

// Label returns a human-readable reference for messages
func (f Fact) Label() string {
	switch {
	case f.HasConcept() && f.ID != "":
		return fmt.Sprintf("fact %s (id %q)", f.Concept, f.ID)
	case f.HasConcept():
		return fmt.Sprintf("fact %s #%d", f.Concept, f.Index+1)
	case f.ID != "":
		return fmt.Sprintf("unnamed %s fact (id %q)", f.Kind, f.ID)
	default:
		return fmt.Sprintf("unnamed %s fact #%d", f.Kind, f.Index+1)
	}
}
