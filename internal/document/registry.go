package document

import (
	"fmt"

	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// Registry holds the declared contexts and units of a filing.
// Entries keep document order; lookup maps hold the last declaration per id.
type Registry struct {
	contexts     []model.Context
	contextIndex map[string]int
	units        []model.Unit
	unitIndex    map[string]int
	findings     []model.Finding
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		contextIndex: make(map[string]int),
		unitIndex:    make(map[string]int),
	}
}

// AddContext records a context in document order.
// A repeated id replaces the earlier entry for lookup and records a duplicate finding.
func (r *Registry) AddContext(c model.Context) {
	c.Index = len(r.contexts)
	r.contexts = append(r.contexts, c)

	if c.ID == "" {
		return
	}
	if prev, ok := r.contextIndex[c.ID]; ok {
		msg := fmt.Sprintf("context id %q is declared more than once (entries #%d and #%d); the later declaration is used",
			c.ID, prev+1, c.Index+1)
		r.findings = append(r.findings, model.Finding{
			RuleID:   model.FindingContextDuplicate,
			Severity: model.SeverityError,
			Message:  msg,
			Subject:  model.ContextSubject(c),
		})
	}
	r.contextIndex[c.ID] = c.Index
}

// AddUnit records a unit in document order.
// A repeated id replaces the earlier entry for lookup and records a duplicate finding.
func (r *Registry) AddUnit(u model.Unit) {
	u.Index = len(r.units)
	r.units = append(r.units, u)

	if u.ID == "" {
		return
	}
	if prev, ok := r.unitIndex[u.ID]; ok {
		msg := fmt.Sprintf("unit id %q is declared more than once (entries #%d and #%d); the later declaration is used",
			u.ID, prev+1, u.Index+1)
		r.findings = append(r.findings, model.Finding{
			RuleID:   model.FindingUnitDuplicate,
			Severity: model.SeverityError,
			Message:  msg,
			Subject:  model.UnitSubject(u),
		})
	}
	r.unitIndex[u.ID] = u.Index
}

// Context looks up a context by id
func (r *Registry) Context(id string) (model.Context, bool) {
	i, ok := r.contextIndex[id]
	if !ok {
		return model.Context{}, false
	}
	return r.contexts[i], true
}

// Unit looks up a unit by id
func (r *Registry) Unit(id string) (model.Unit, bool) {
	i, ok := r.unitIndex[id]
	if !ok {
		return model.Unit{}, false
	}
	return r.units[i], true
}

// Contexts returns every declared context in document order, duplicates included
func (r *Registry) Contexts() []model.Context {
	return r.contexts
}

// Units returns every declared unit in document order, duplicates included
func (r *Registry) Units() []model.Unit {
	return r.units
}

// DistinctContexts returns the number of distinct context ids available for lookup
func (r *Registry) DistinctContexts() int {
	return len(r.contextIndex)
}

// DistinctUnits returns the number of distinct unit ids available for lookup
func (r *Registry) DistinctUnits() int {
	return len(r.unitIndex)
}

// Findings returns the findings recorded while the registry was built
func (r *Registry) Findings() []model.Finding {
	return r.findings
}
