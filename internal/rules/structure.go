package rules

import (
	"github.com/ppiankov/ixbrlcheck/internal/document"
	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// contextDefect reports every context recorded with a given defect
type contextDefect struct {
	meta
	defect model.Defect
}

func contextDefectRule(defect model.Defect) func(meta, *Profile) Rule {
	return func(m meta, _ *Profile) Rule {
		return contextDefect{meta: m, defect: defect}
	}
}

func (r contextDefect) Evaluate(doc *document.Document) []model.Finding {
	var findings []model.Finding
	for _, c := range doc.Contexts() {
		if !c.Defects.Has(r.defect) {
			continue
		}
		switch r.defect {
		case model.DefectMissingID:
			findings = append(findings, r.finding(model.ContextSubject(c),
				"%s has no id", c.Label()))
		case model.DefectMissingPeriod:
			findings = append(findings, r.finding(model.ContextSubject(c),
				"%s has no resolvable period: %s", c.Label(), c.Problem))
		default:
			findings = append(findings, r.finding(model.ContextSubject(c),
				"%s has an invalid period: %s", c.Label(), c.Problem))
		}
	}
	return findings
}

// unitDefect reports every unit recorded with a given defect
type unitDefect struct {
	meta
	defect model.Defect
}

func unitDefectRule(defect model.Defect) func(meta, *Profile) Rule {
	return func(m meta, _ *Profile) Rule {
		return unitDefect{meta: m, defect: defect}
	}
}

func (r unitDefect) Evaluate(doc *document.Document) []model.Finding {
	var findings []model.Finding
	for _, u := range doc.Units() {
		if !u.Defects.Has(r.defect) {
			continue
		}
		switch {
		case r.defect == model.DefectMissingID:
			findings = append(findings, r.finding(model.UnitSubject(u),
				"%s has no id", u.Label()))
		case u.Measure.IsDivide():
			findings = append(findings, r.finding(model.UnitSubject(u),
				"%s has an incomplete divide measure %q", u.Label(), u.Measure.String()))
		default:
			findings = append(findings, r.finding(model.UnitSubject(u),
				"%s has no measure", u.Label()))
		}
	}
	return findings
}
