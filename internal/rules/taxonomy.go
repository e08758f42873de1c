package rules

import (
	"strings"

	"github.com/ppiankov/ixbrlcheck/internal/document"
	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// schemaRule checks the declared schema references against the
// profile's expected taxonomy namespace fragments
type schemaRule struct {
	meta
	fragments []string
}

func newSchemaRule(m meta, p *Profile) Rule {
	return schemaRule{meta: m, fragments: p.SchemaFragments}
}

func (r schemaRule) Evaluate(doc *document.Document) []model.Finding {
	refs := doc.SchemaRefs()
	subject := &model.Subject{Kind: model.SubjectDocument}

	if len(refs) == 0 {
		if len(r.fragments) == 0 {
			return []model.Finding{r.finding(subject, "no taxonomy schema reference is declared")}
		}
		return []model.Finding{r.finding(subject,
			"no taxonomy schema reference is declared; expected one matching %s", strings.Join(r.fragments, " or "))}
	}

	if len(r.fragments) == 0 {
		return nil
	}
	for _, ref := range refs {
		for _, fragment := range r.fragments {
			if strings.Contains(ref, fragment) {
				return nil
			}
		}
	}

	return []model.Finding{r.finding(subject,
		"none of the %d declared schema references matches %s", len(refs), strings.Join(r.fragments, " or "))}
}

// mandatoryRule reports profile concepts without any corresponding fact
type mandatoryRule struct {
	meta
	concepts []MandatoryConcept
}

func newMandatoryRule(m meta, p *Profile) Rule {
	return mandatoryRule{meta: m, concepts: p.MandatoryConcepts}
}

func (r mandatoryRule) Evaluate(doc *document.Document) []model.Finding {
	if len(r.concepts) == 0 {
		return nil
	}

	reported := make(map[string][]model.ItemKind)
	for _, f := range doc.Facts() {
		if f.HasConcept() {
			reported[f.Concept] = append(reported[f.Concept], f.Kind)
		}
	}

	var findings []model.Finding
	for i, c := range r.concepts {
		if c.Kind.matchesAny(reported[c.Name]) {
			continue
		}
		subject := &model.Subject{Kind: model.SubjectConcept, Concept: c.Name, Index: i}
		findings = append(findings, r.finding(subject,
			"mandatory concept %s is not reported%s", c.Name, c.Kind.qualifier()))
	}
	return findings
}
