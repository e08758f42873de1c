package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ixbrlcheck/internal/document"
	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/xmltree"
)

// RegistryBuilder builds the context/unit registry from an element tree
type RegistryBuilder struct{}

// NewRegistryBuilder creates a new registry builder
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// Build walks every xbrli:context and xbrli:unit in document order.
// It never fails: malformed entries are kept with defect markers.
func (b *RegistryBuilder) Build(root *xmltree.Element) *document.Registry {
	registry := document.NewRegistry()
	if root == nil {
		return registry
	}

	root.Walk(func(el *xmltree.Element) bool {
		switch {
		case el.Is(NamespaceXBRLI, "context"):
			registry.AddContext(parseContext(el))
			return false
		case el.Is(NamespaceXBRLI, "unit"):
			registry.AddUnit(parseUnit(el))
			return false
		}
		return true
	})

	return registry
}

// parseContext reads id, entity and period of a context element
func parseContext(el *xmltree.Element) model.Context {
	c := model.Context{
		ID: el.AttrValue("", "id"),
	}
	if c.ID == "" {
		c.Defects |= model.DefectMissingID
	}

	if entity := el.FirstChild(NamespaceXBRLI, "entity"); entity != nil {
		if ident := entity.FirstChild(NamespaceXBRLI, "identifier"); ident != nil {
			c.Entity = model.Entity{
				Scheme:     ident.AttrValue("", "scheme"),
				Identifier: strings.TrimSpace(ident.Text()),
			}
		}
	}

	periodEl := el.FirstChild(NamespaceXBRLI, "period")
	if periodEl == nil {
		c.Defects |= model.DefectMissingPeriod
		c.Problem = "no period element"
		return c
	}

	period, defect, problem := parsePeriod(periodEl)
	c.Period = period
	c.Defects |= defect
	c.Problem = problem

	return c
}

// parsePeriod resolves the period variant. A nil period comes with the defect explaining why.
func parsePeriod(el *xmltree.Element) (*model.Period, model.Defect, string) {
	if el.FirstChild(NamespaceXBRLI, "forever") != nil {
		return &model.Period{Kind: model.PeriodForever}, 0, ""
	}

	if instantEl := el.FirstChild(NamespaceXBRLI, "instant"); instantEl != nil {
		raw := strings.TrimSpace(instantEl.Text())
		if raw == "" {
			return nil, model.DefectMissingPeriod, "empty instant"
		}
		t, err := model.ParseDate(raw)
		if err != nil {
			return nil, model.DefectInvalidPeriod, fmt.Sprintf("instant: %v", err)
		}
		return &model.Period{Kind: model.PeriodInstant, Instant: t, RawStart: raw}, 0, ""
	}

	startEl := el.FirstChild(NamespaceXBRLI, "startDate")
	endEl := el.FirstChild(NamespaceXBRLI, "endDate")
	if startEl == nil && endEl == nil {
		return nil, model.DefectMissingPeriod, "period has no instant, duration or forever"
	}

	var rawStart, rawEnd string
	if startEl != nil {
		rawStart = strings.TrimSpace(startEl.Text())
	}
	if endEl != nil {
		rawEnd = strings.TrimSpace(endEl.Text())
	}
	switch {
	case rawStart == "":
		return nil, model.DefectMissingPeriod, "duration has no startDate"
	case rawEnd == "":
		return nil, model.DefectMissingPeriod, "duration has no endDate"
	}

	start, err := model.ParseDate(rawStart)
	if err != nil {
		return nil, model.DefectInvalidPeriod, fmt.Sprintf("startDate: %v", err)
	}
	end, err := model.ParseDate(rawEnd)
	if err != nil {
		return nil, model.DefectInvalidPeriod, fmt.Sprintf("endDate: %v", err)
	}
	if start.After(end) {
		return nil, model.DefectInvalidPeriod, fmt.Sprintf("startDate %s is after endDate %s", rawStart, rawEnd)
	}

	return &model.Period{
		Kind:     model.PeriodDuration,
		Start:    start,
		End:      end,
		RawStart: rawStart,
		RawEnd:   rawEnd,
	}, 0, ""
}

// parseUnit reads id and measure of a unit element
func parseUnit(el *xmltree.Element) model.Unit {
	u := model.Unit{
		ID: el.AttrValue("", "id"),
	}
	if u.ID == "" {
		u.Defects |= model.DefectMissingID
	}

	if divide := el.FirstChild(NamespaceXBRLI, "divide"); divide != nil {
		if num := divide.FirstChild(NamespaceXBRLI, "unitNumerator"); num != nil {
			u.Measure.Numerator = joinMeasures(num)
		}
		if den := divide.FirstChild(NamespaceXBRLI, "unitDenominator"); den != nil {
			u.Measure.Denominator = joinMeasures(den)
		}
	} else {
		u.Measure.Simple = joinMeasures(el)
	}

	if !u.Measure.Complete() {
		u.Defects |= model.DefectMissingMeasure
	}

	return u
}

// joinMeasures joins the measure children of el, multiplied measures with "*"
func joinMeasures(el *xmltree.Element) string {
	var parts []string
	for _, m := range el.ChildrenNamed(NamespaceXBRLI, "measure") {
		if v := strings.TrimSpace(m.Text()); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "*")
}
