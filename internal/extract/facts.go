package extract

import (
	"strings"

	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/xmltree"
)

// itemKinds maps inline XBRL element names to reportable item kinds
var itemKinds = map[string]model.ItemKind{
	"nonNumeric":  model.ItemNonNumeric,
	"nonFraction": model.ItemNonFraction,
	"fraction":    model.ItemFraction,
}

// FactExtractor extracts reported facts from an element tree
type FactExtractor struct{}

// NewFactExtractor creates a new fact extractor
func NewFactExtractor() *FactExtractor {
	return &FactExtractor{}
}

// Extract returns every tagged fact in document order.
// Extraction reads attributes only: references are not resolved and
// missing attributes are left empty.
func (e *FactExtractor) Extract(root *xmltree.Element) []model.Fact {
	if root == nil {
		return nil
	}

	var facts []model.Fact
	root.Walk(func(el *xmltree.Element) bool {
		kind, ok := factKind(el)
		if !ok {
			return true
		}

		fact := readFact(el, kind)
		fact.Index = len(facts)
		facts = append(facts, fact)

		// nested facts are reported too
		return true
	})

	return facts
}

// factKind resolves the item kind of an inline XBRL element
func factKind(el *xmltree.Element) (model.ItemKind, bool) {
	if !isInline(el.Name.Space) {
		return 0, false
	}
	kind, ok := itemKinds[el.Name.Local]
	return kind, ok
}

// readFact reads the attributes and value of a fact element
func readFact(el *xmltree.Element, kind model.ItemKind) model.Fact {
	fact := model.Fact{
		Kind:       kind,
		Concept:    el.AttrValue("", "name"),
		ContextRef: el.AttrValue("", "contextRef"),
		ID:         el.AttrValue("", "id"),
		Nil:        isNil(el),
	}

	if kind.IsNumeric() {
		fact.UnitRef = el.AttrValue("", "unitRef")
		fact.Decimals = el.AttrValue("", "decimals")
		fact.Sign = el.AttrValue("", "sign")
		fact.Scale = el.AttrValue("", "scale")
		fact.Format = el.AttrValue("", "format")
	}

	if !fact.Nil {
		fact.Value = factValue(el, kind)
	}

	return fact
}

// factValue returns the textual value of a fact
func factValue(el *xmltree.Element, kind model.ItemKind) string {
	switch kind {
	case model.ItemFraction:
		num := inlineChild(el, "numerator")
		den := inlineChild(el, "denominator")
		if num == nil && den == nil {
			return strings.TrimSpace(el.Text())
		}
		return textOf(num) + "/" + textOf(den)
	case model.ItemNonFraction:
		return strings.TrimSpace(el.Text())
	default:
		return strings.TrimSpace(el.TextExcluding(func(child *xmltree.Element) bool {
			return isInline(child.Name.Space) && child.Name.Local == "exclude"
		}))
	}
}

// inlineChild returns the first direct child with the given inline XBRL name
func inlineChild(el *xmltree.Element, local string) *xmltree.Element {
	for _, c := range el.Children() {
		if isInline(c.Name.Space) && c.Name.Local == local {
			return c
		}
	}
	return nil
}

func textOf(el *xmltree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// isNil reports whether xsi:nil is set on the element
func isNil(el *xmltree.Element) bool {
	switch el.AttrValue(NamespaceXSI, "nil") {
	case "true", "1":
		return true
	default:
		return false
	}
}

// SchemaRefs returns the href of every link:schemaRef in document order
func SchemaRefs(root *xmltree.Element) []string {
	if root == nil {
		return nil
	}

	var refs []string
	for _, el := range root.FindAll(func(el *xmltree.Element) bool {
		return el.Is(NamespaceLink, "schemaRef")
	}) {
		if href := schemaHref(el); href != "" {
			refs = append(refs, href)
		}
	}
	return refs
}

// schemaHref reads xlink:href, falling back to any href attribute when the
// xlink prefix was not declared.
func schemaHref(el *xmltree.Element) string {
	if href := el.AttrValue(NamespaceXLink, "href"); href != "" {
		return href
	}
	for _, a := range el.Attrs {
		if a.Name.Local == "href" {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}
