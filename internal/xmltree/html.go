package xmltree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

const xhtmlNamespace = "http://www.w3.org/1999/xhtml"

// canonicalNames restores the case of inline XBRL element and attribute
// names, which the HTML tokenizer folds to lower case.
var canonicalNames = func() map[string]string {
	names := []string{
		// ix
		"nonNumeric", "nonFraction", "fraction", "numerator", "denominator",
		"header", "hidden", "references", "resources", "exclude",
		"continuation", "footnote", "relationship", "tuple",
		// xbrli
		"context", "entity", "identifier", "segment", "scenario", "period",
		"instant", "startDate", "endDate", "forever", "unit", "measure",
		"divide", "unitNumerator", "unitDenominator",
		// link
		"schemaRef", "linkbaseRef",
		// attributes
		"contextRef", "unitRef", "continuedAt", "escape", "format", "scale",
		"sign", "decimals", "precision", "name", "id", "nil", "href", "type",
		"target", "tupleRef", "order", "fromRefs", "toRefs", "arcrole",
		"footnoteRole", "linkRole", "scheme",
	}
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[strings.ToLower(n)] = n
	}
	return m
}()

// HTMLProvider is the lenient provider built on the HTML5 parser.
// It accepts malformed markup and resolves prefixes from in-scope
// xmlns declarations.
type HTMLProvider struct{}

// NewHTMLProvider creates a new lenient HTML provider
func NewHTMLProvider() *HTMLProvider {
	return &HTMLProvider{}
}

// Name returns the provider name
func (p *HTMLProvider) Name() string {
	return "html"
}

// Parse builds the element tree from an HTML document
func (p *HTMLProvider) Parse(r io.Reader) (*Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return convertNode(c, map[string]string{"": xhtmlNamespace}), nil
		}
	}

	return nil, ErrNoRoot
}

// convertNode converts an HTML element and its subtree
func convertNode(n *html.Node, parentScope map[string]string) *Element {
	scope := parentScope
	copied := false
	for _, attr := range n.Attr {
		prefix, isDecl := namespaceDecl(attr.Key)
		if !isDecl {
			continue
		}
		if !copied {
			scope = copyScope(parentScope)
			copied = true
		}
		scope[prefix] = attr.Val
	}

	el := &Element{
		Name: resolveName(n.Data, scope, true),
	}

	for _, attr := range n.Attr {
		if _, isDecl := namespaceDecl(attr.Key); isDecl {
			continue
		}
		key := attr.Key
		if attr.Namespace != "" {
			key = attr.Namespace + ":" + key
		}
		el.Attrs = append(el.Attrs, Attr{
			Name:  resolveName(key, scope, false),
			Value: attr.Val,
		})
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el.appendChild(convertNode(c, scope))
		case html.TextNode:
			el.appendText(c.Data)
		}
	}

	return el
}

// namespaceDecl reports whether an attribute key declares a namespace
func namespaceDecl(key string) (string, bool) {
	switch {
	case key == "xmlns":
		return "", true
	case strings.HasPrefix(key, "xmlns:"):
		return strings.TrimPrefix(key, "xmlns:"), true
	default:
		return "", false
	}
}

// resolveName splits a prefixed name and maps the prefix to its namespace.
// Unprefixed attributes stay in no namespace.
func resolveName(raw string, scope map[string]string, isElement bool) Name {
	prefix, local := "", raw
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		prefix, local = raw[:i], raw[i+1:]
	}
	if canonical, ok := canonicalNames[strings.ToLower(local)]; ok {
		local = canonical
	}

	if prefix == "" && !isElement {
		return Name{Local: local}
	}
	space, ok := scope[prefix]
	if !ok {
		if prefix == "xml" {
			space = "http://www.w3.org/XML/1998/namespace"
		} else {
			space = prefix
		}
	}
	return Name{Space: space, Local: local}
}

func copyScope(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
