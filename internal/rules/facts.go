package rules

import (
	"strconv"

	"github.com/ppiankov/ixbrlcheck/internal/document"
	"github.com/ppiankov/ixbrlcheck/internal/model"
)

type factName struct{ meta }

func newFactNameRule(m meta, _ *Profile) Rule {
	return factName{m}
}

func (r factName) Evaluate(doc *document.Document) []model.Finding {
	var findings []model.Finding
	for _, f := range doc.Facts() {
		if !f.HasConcept() {
			findings = append(findings, r.finding(model.FactSubject(f),
				"%s has no name attribute", f.Label()))
		}
	}
	return findings
}

type factContext struct{ meta }

func newFactContextRule(m meta, _ *Profile) Rule {
	return factContext{m}
}

func (r factContext) Evaluate(doc *document.Document) []model.Finding {
	var findings []model.Finding
	for _, f := range doc.Facts() {
		if !f.HasContextRef() {
			findings = append(findings, r.finding(model.FactSubject(f),
				"%s has no contextRef", f.Label()))
			continue
		}
		if _, ok := doc.Context(f.ContextRef); !ok {
			findings = append(findings, r.finding(model.FactSubject(f),
				"%s references undeclared context %q", f.Label(), f.ContextRef))
		}
	}
	return findings
}

type factUnit struct{ meta }

func newFactUnitRule(m meta, _ *Profile) Rule {
	return factUnit{m}
}

func (r factUnit) Evaluate(doc *document.Document) []model.Finding {
	var findings []model.Finding
	for _, f := range doc.Facts() {
		if !f.IsNumeric() {
			continue
		}
		if !f.HasUnitRef() {
			findings = append(findings, r.finding(model.FactSubject(f),
				"numeric %s has no unitRef", f.Label()))
			continue
		}
		if _, ok := doc.Unit(f.UnitRef); !ok {
			findings = append(findings, r.finding(model.FactSubject(f),
				"%s references undeclared unit %q", f.Label(), f.UnitRef))
		}
	}
	return findings
}

type factDecimals struct{ meta }

func newFactDecimalsRule(m meta, _ *Profile) Rule {
	return factDecimals{m}
}

func (r factDecimals) Evaluate(doc *document.Document) []model.Finding {
	var findings []model.Finding
	for _, f := range doc.Facts() {
		if !f.IsNumeric() || f.Decimals == "" || validDecimals(f.Decimals) {
			continue
		}
		findings = append(findings, r.finding(model.FactSubject(f),
			"%s has decimals %q; expected an integer or INF", f.Label(), f.Decimals))
	}
	return findings
}

// validDecimals reports whether v is an xbrli:decimalsType value
func validDecimals(v string) bool {
	if v == "INF" {
		return true
	}
	_, err := strconv.Atoi(v)
	return err == nil
}

type factSign struct{ meta }

func newFactSignRule(m meta, _ *Profile) Rule {
	return factSign{m}
}

func (r factSign) Evaluate(doc *document.Document) []model.Finding {
	var findings []model.Finding
	for _, f := range doc.Facts() {
		if f.IsNumeric() && f.Sign != "" && f.Sign != "-" {
			findings = append(findings, r.finding(model.FactSubject(f),
				"%s has sign %q; only \"-\" is allowed", f.Label(), f.Sign))
		}
	}
	return findings
}
