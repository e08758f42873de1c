// Package xmltree provides a small, parser-neutral element tree and the
// providers that build it from raw filing bytes.
package xmltree

import "strings"

// Name is a namespace-qualified XML name. Space holds the namespace URI.
type Name struct {
	Space string
	Local string
}

// Attr is a single attribute of an element
type Attr struct {
	Name  Name
	Value string
}

// Node is one item of an element's mixed content: either text or a child element
type Node struct {
	Text    string
	Element *Element
}

// Element is an XML element with its attributes and ordered content
type Element struct {
	Name  Name
	Attrs []Attr
	Nodes []Node
}

// Is reports whether the element has the given namespace and local name
func (e *Element) Is(space, local string) bool {
	return e.Name.Space == space && e.Name.Local == local
}

// Attr returns the value of an attribute and whether it was present.
// An empty space matches only unqualified attributes.
func (e *Element) Attr(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue returns the trimmed value of an attribute, or "" when absent
func (e *Element) AttrValue(space, local string) string {
	v, _ := e.Attr(space, local)
	return strings.TrimSpace(v)
}

// Children returns the child elements in document order
func (e *Element) Children() []*Element {
	var out []*Element
	for _, n := range e.Nodes {
		if n.Element != nil {
			out = append(out, n.Element)
		}
	}
	return out
}

// ChildrenNamed returns the child elements with the given name
func (e *Element) ChildrenNamed(space, local string) []*Element {
	var out []*Element
	for _, n := range e.Nodes {
		if n.Element != nil && n.Element.Is(space, local) {
			out = append(out, n.Element)
		}
	}
	return out
}

// FirstChild returns the first child element with the given name, or nil
func (e *Element) FirstChild(space, local string) *Element {
	for _, n := range e.Nodes {
		if n.Element != nil && n.Element.Is(space, local) {
			return n.Element
		}
	}
	return nil
}

// Walk visits e and its descendants in document order.
// Returning false from fn skips the subtree of that element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, n := range e.Nodes {
		if n.Element != nil {
			n.Element.Walk(fn)
		}
	}
}

// FindAll returns every element (including e) matching a predicate, in document order
func (e *Element) FindAll(predicate func(*Element) bool) []*Element {
	var results []*Element
	e.Walk(func(el *Element) bool {
		if predicate(el) {
			results = append(results, el)
		}
		return true
	})
	return results
}

// FindFirst returns the first element (including e) matching a predicate, or nil
func (e *Element) FindFirst(predicate func(*Element) bool) *Element {
	var result *Element
	e.Walk(func(el *Element) bool {
		if result != nil {
			return false
		}
		if predicate(el) {
			result = el
			return false
		}
		return true
	})
	return result
}

// Descendants returns every element below e with the given name
func (e *Element) Descendants(space, local string) []*Element {
	var results []*Element
	for _, c := range e.Children() {
		results = append(results, c.FindAll(func(el *Element) bool {
			return el.Is(space, local)
		})...)
	}
	return results
}

// Text returns the concatenated text content of e and its descendants
func (e *Element) Text() string {
	return e.TextExcluding(nil)
}

// TextExcluding returns the concatenated text content, skipping the
// subtrees of descendants for which skip returns true.
func (e *Element) TextExcluding(skip func(*Element) bool) string {
	var buf strings.Builder
	e.writeText(&buf, skip)
	return buf.String()
}

func (e *Element) writeText(buf *strings.Builder, skip func(*Element) bool) {
	for _, n := range e.Nodes {
		if n.Element == nil {
			buf.WriteString(n.Text)
			continue
		}
		if skip != nil && skip(n.Element) {
			continue
		}
		n.Element.writeText(buf, skip)
	}
}

// appendText adds character data, merging with a preceding text node
func (e *Element) appendText(s string) {
	if s == "" {
		return
	}
	if last := len(e.Nodes) - 1; last >= 0 && e.Nodes[last].Element == nil {
		e.Nodes[last].Text += s
		return
	}
	e.Nodes = append(e.Nodes, Node{Text: s})
}

// appendChild adds a child element
func (e *Element) appendChild(child *Element) {
	e.Nodes = append(e.Nodes, Node{Element: child})
}
