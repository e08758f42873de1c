// Package document holds the immutable model of a parsed filing that
// validation rules are written against.
package document

import "github.com/ppiankov/ixbrlcheck/internal/model"

// Document is the assembled model of one filing.
// It is never modified after Assemble, so rules may read it concurrently.
// Slices returned by accessors are shared and must be treated as read-only.
type Document struct {
	registry   *Registry
	facts      []model.Fact
	schemaRefs []string
}

// Assemble builds a Document from its extracted parts
func Assemble(registry *Registry, facts []model.Fact, schemaRefs []string) *Document {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Document{
		registry:   registry,
		facts:      append([]model.Fact(nil), facts...),
		schemaRefs: append([]string(nil), schemaRefs...),
	}
}

// Context returns the context declared with id, if any
func (d *Document) Context(id string) (model.Context, bool) {
	return d.registry.Context(id)
}

// Unit returns the unit declared with id, if any
func (d *Document) Unit(id string) (model.Unit, bool) {
	return d.registry.Unit(id)
}

// Contexts returns all contexts in document order
func (d *Document) Contexts() []model.Context {
	return d.registry.Contexts()
}

// Units returns all units in document order
func (d *Document) Units() []model.Unit {
	return d.registry.Units()
}

// Facts returns all facts in document order
func (d *Document) Facts() []model.Fact {
	return d.facts
}

// SchemaRefs returns the declared taxonomy schema references
func (d *Document) SchemaRefs() []string {
	return d.schemaRefs
}

// RegistryFindings returns the findings recorded during registry construction
func (d *Document) RegistryFindings() []model.Finding {
	return d.registry.Findings()
}

// Stats summarises the size of the document
func (d *Document) Stats() model.Stats {
	numeric := 0
	for _, f := range d.facts {
		if f.IsNumeric() {
			numeric++
		}
	}
	return model.Stats{
		Contexts:   len(d.registry.Contexts()),
		Units:      len(d.registry.Units()),
		Facts:      len(d.facts),
		Numeric:    numeric,
		SchemaRefs: len(d.schemaRefs),
	}
}
