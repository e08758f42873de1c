package rules

import "github.com/ppiankov/ixbrlcheck/internal/model"

// Definition describes a catalog entry and builds its rule for a profile
type Definition struct {
	ID          string
	Description string
	Severity    model.Severity
	New         func(p *Profile) Rule
}

// Catalog maps rule ids to definitions and keeps registration order,
// which is both the evaluation and the reporting order.
type Catalog struct {
	definitions map[string]Definition
	order       []string
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		definitions: make(map[string]Definition),
	}
}

// Register adds a definition. Re-registering an id replaces the
// definition and keeps its original position.
func (c *Catalog) Register(def Definition) {
	if _, exists := c.definitions[def.ID]; !exists {
		c.order = append(c.order, def.ID)
	}
	c.definitions[def.ID] = def
}

// Get returns the definition for a rule id
func (c *Catalog) Get(id string) (Definition, bool) {
	def, ok := c.definitions[id]
	return def, ok
}

// Definitions returns all definitions in registration order
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.definitions[id])
	}
	return out
}

// Position returns the registration index of a rule id, or -1
func (c *Catalog) Position(id string) int {
	for i, v := range c.order {
		if v == id {
			return i
		}
	}
	return -1
}

// Resolve builds the rules enabled by a profile, in catalog order.
// Severity overrides of the profile are applied.
func (c *Catalog) Resolve(p *Profile) []Rule {
	enabled := make(map[string]bool, len(p.Rules))
	for _, id := range p.Rules {
		enabled[id] = true
	}

	var out []Rule
	for _, id := range c.order {
		if !enabled[id] {
			continue
		}
		rule := c.definitions[id].New(p)
		if sev, ok := p.SeverityFor(id); ok && sev != rule.Severity() {
			rule = overridden{Rule: rule, severity: sev}
		}
		out = append(out, rule)
	}
	return out
}

// define builds a definition whose rules share its metadata
func define(id, description string, severity model.Severity, build func(m meta, p *Profile) Rule) Definition {
	return Definition{
		ID:          id,
		Description: description,
		Severity:    severity,
		New: func(p *Profile) Rule {
			return build(meta{id: id, description: description, severity: severity}, p)
		},
	}
}

// DefaultCatalog returns the built-in rules in their fixed order
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.Register(define(RuleSchemaMissing,
		"Declared schema references include the profile's expected taxonomy",
		model.SeverityError, newSchemaRule))
	c.Register(define(RuleMandatoryMissing,
		"Every mandatory concept of the profile is reported at least once",
		model.SeverityError, newMandatoryRule))

	c.Register(define(RuleContextMissingID,
		"Every context has an id",
		model.SeverityError, contextDefectRule(model.DefectMissingID)))
	c.Register(define(RuleContextMissingPeriod,
		"Every context has a resolvable period",
		model.SeverityError, contextDefectRule(model.DefectMissingPeriod)))
	c.Register(define(RuleContextInvalidPeriod,
		"Period dates parse and a duration does not start after it ends",
		model.SeverityError, contextDefectRule(model.DefectInvalidPeriod)))

	c.Register(define(RuleUnitMissingID,
		"Every unit has an id",
		model.SeverityError, unitDefectRule(model.DefectMissingID)))
	c.Register(define(RuleUnitMissingMeasure,
		"Every unit has a measure, or a divide with both sides",
		model.SeverityError, unitDefectRule(model.DefectMissingMeasure)))

	c.Register(define(RuleFactMissingName,
		"Every fact names its concept",
		model.SeverityError, newFactNameRule))
	c.Register(define(RuleFactMissingContextRef,
		"Every fact references a declared context",
		model.SeverityError, newFactContextRule))
	c.Register(define(RuleFactMissingUnitRef,
		"Every numeric fact references a declared unit",
		model.SeverityError, newFactUnitRule))
	c.Register(define(RuleFactInvalidDecimals,
		"Numeric decimals are an integer or INF",
		model.SeverityError, newFactDecimalsRule))
	c.Register(define(RuleFactInvalidSign,
		"Numeric sign, when present, is \"-\"",
		model.SeverityError, newFactSignRule))

	return c
}
