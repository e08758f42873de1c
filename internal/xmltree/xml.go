package xmltree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// XMLProvider is the strict, namespace-aware provider for XHTML filings.
// Any well-formedness error fails the parse.
type XMLProvider struct{}

// NewXMLProvider creates a new strict XML provider
func NewXMLProvider() *XMLProvider {
	return &XMLProvider{}
}

// Name returns the provider name
func (p *XMLProvider) Name() string {
	return "xml"
}

// Parse builds the element tree from an XML document
func (p *XMLProvider) Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	// XHTML filings routinely use HTML named entities such as &nbsp;
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Name:  Name{Space: t.Name.Space, Local: t.Name.Local},
				Attrs: make([]Attr, 0, len(t.Attr)),
			}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{
					Name:  Name{Space: a.Name.Space, Local: a.Name.Local},
					Value: a.Value,
				})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements (%s after %s)", t.Name.Local, root.Name.Local)
				}
				root = el
			} else {
				stack[len(stack)-1].appendChild(el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].appendText(string(t))
			}
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}

	return root, nil
}
