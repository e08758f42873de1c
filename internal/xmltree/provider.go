package xmltree

import (
	"errors"
	"io"
	"sort"
	"strings"
)

// ErrNoRoot is returned when the input contains no root element
var ErrNoRoot = errors.New("document has no root element")

// Provider parses raw filing bytes into an element tree
type Provider interface {
	// Name returns the provider name used in configuration
	Name() string

	// Parse reads the whole input and returns the root element
	Parse(r io.Reader) (*Element, error)
}

// Registry manages tree providers
type Registry struct {
	providers map[string]Provider
	fallback  Provider
}

// NewRegistry creates a registry with the built-in providers.
// The strict XML provider is the fallback.
func NewRegistry() *Registry {
	registry := &Registry{
		providers: make(map[string]Provider),
	}

	registry.Register(NewXMLProvider())
	registry.Register(NewHTMLProvider())

	registry.fallback = registry.providers["xml"]

	return registry
}

// Register registers a provider under its name
func (r *Registry) Register(p Provider) {
	r.providers[strings.ToLower(p.Name())] = p
}

// Get returns the provider with the given name
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// FindProvider picks a provider by explicit name, then by content type,
// and falls back to the strict XML provider.
func (r *Registry) FindProvider(name string, contentType string) Provider {
	if p, ok := r.Get(name); ok {
		return p
	}

	ct := strings.ToLower(contentType)
	if strings.HasPrefix(ct, "text/html") {
		if p, ok := r.providers["html"]; ok {
			return p
		}
	}

	return r.fallback
}

// Names returns the registered provider names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
