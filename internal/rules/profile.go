package rules

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ixbrlcheck/internal/model"
)

// GenericProfile is the fallback profile name
const GenericProfile = "generic"

//go:embed profiles.yaml
var builtinProfiles []byte

// ConceptKind restricts which facts satisfy a mandatory concept
type ConceptKind string

const (
	ConceptAny        ConceptKind = "any"
	ConceptNonNumeric ConceptKind = "non_numeric"
	ConceptNumeric    ConceptKind = "numeric"
)

func (k ConceptKind) valid() bool {
	switch k {
	case "", ConceptAny, ConceptNonNumeric, ConceptNumeric:
		return true
	default:
		return false
	}
}

// matches reports whether a fact of the given kind satisfies k
func (k ConceptKind) matches(kind model.ItemKind) bool {
	switch k {
	case ConceptNonNumeric:
		return !kind.IsNumeric()
	case ConceptNumeric:
		return kind.IsNumeric()
	default:
		return true
	}
}

func (k ConceptKind) matchesAny(kinds []model.ItemKind) bool {
	for _, kind := range kinds {
		if k.matches(kind) {
			return true
		}
	}
	return false
}

// qualifier describes the restriction for messages
func (k ConceptKind) qualifier() string {
	switch k {
	case ConceptNonNumeric:
		return " as a non-numeric fact"
	case ConceptNumeric:
		return " as a numeric fact"
	default:
		return ""
	}
}

// MandatoryConcept is a concept a profile requires to be reported
type MandatoryConcept struct {
	Name string      `yaml:"name" toml:"name" json:"name"`
	Kind ConceptKind `yaml:"kind" toml:"kind" json:"kind,omitempty"`
}

// Profile is a named rule subset with the configuration its rules need
type Profile struct {
	Name              string             `yaml:"name" toml:"name" json:"name"`
	Description       string             `yaml:"description" toml:"description" json:"description,omitempty"`
	Extends           string             `yaml:"extends" toml:"extends" json:"extends,omitempty"`
	Rules             []string           `yaml:"rules" toml:"rules" json:"rules"`
	SchemaFragments   []string           `yaml:"schema_fragments" toml:"schema_fragments" json:"schema_fragments,omitempty"`
	MandatoryConcepts []MandatoryConcept `yaml:"mandatory_concepts" toml:"mandatory_concepts" json:"mandatory_concepts,omitempty"`
	SeverityOverrides map[string]string  `yaml:"severity_overrides" toml:"severity_overrides" json:"severity_overrides,omitempty"`
}

// SeverityFor returns the overridden severity of a rule, if any
func (p *Profile) SeverityFor(ruleID string) (model.Severity, bool) {
	raw, ok := p.SeverityOverrides[ruleID]
	if !ok {
		return 0, false
	}
	sev, err := model.ParseSeverity(raw)
	if err != nil {
		return 0, false
	}
	return sev, true
}

// Enables reports whether the profile runs a rule
func (p *Profile) Enables(ruleID string) bool {
	for _, id := range p.Rules {
		if id == ruleID {
			return true
		}
	}
	return false
}

// profileFile is the on-disk layout of a profiles file
type profileFile struct {
	Profiles []Profile `yaml:"profiles" toml:"profiles"`
}

// ProfileSet holds profiles by case-insensitive name.
// Profiles returned by Lookup have their extends chain flattened.
type ProfileSet struct {
	declared map[string]Profile
	resolved map[string]*Profile
	order    []string
}

// NewProfileSet creates an empty profile set
func NewProfileSet() *ProfileSet {
	return &ProfileSet{
		declared: make(map[string]Profile),
		resolved: make(map[string]*Profile),
	}
}

// DefaultProfiles returns the built-in generic and ESEF profiles
func DefaultProfiles() (*ProfileSet, error) {
	profiles, err := ParseProfiles(builtinProfiles, "yaml")
	if err != nil {
		return nil, fmt.Errorf("builtin profiles: %w", err)
	}

	set := NewProfileSet()
	if err := set.Add(profiles...); err != nil {
		return nil, fmt.Errorf("builtin profiles: %w", err)
	}
	return set, nil
}

// LoadProfiles returns the built-in profiles overlaid with the profiles
// declared in path. A profile with a built-in name replaces it.
func LoadProfiles(path string) (*ProfileSet, error) {
	set, err := DefaultProfiles()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	profiles, err := ParseProfiles(data, formatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := set.Add(profiles...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return set, nil
}

// formatOf picks the decoder from the file extension
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	default:
		return "yaml"
	}
}

// ParseProfiles decodes a profiles document in YAML or TOML.
// Unknown fields are rejected.
func ParseProfiles(data []byte, format string) ([]Profile, error) {
	var file profileFile

	switch format {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode toml profiles: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode yaml profiles: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}

	for i, p := range file.Profiles {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("profile #%d has no name", i+1)
		}
	}

	return file.Profiles, nil
}

// Add declares profiles, replacing any with the same name, and re-resolves
// the extends chains. The set is left unchanged on error.
func (s *ProfileSet) Add(profiles ...Profile) error {
	declared := make(map[string]Profile, len(s.declared)+len(profiles))
	for k, v := range s.declared {
		declared[k] = v
	}
	order := append([]string(nil), s.order...)

	for _, p := range profiles {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if _, exists := declared[key]; !exists {
			order = append(order, key)
		}
		declared[key] = p
	}

	resolved := make(map[string]*Profile, len(declared))
	for key := range declared {
		p, err := flatten(declared, key, nil)
		if err != nil {
			return err
		}
		resolved[key] = p
	}

	s.declared = declared
	s.resolved = resolved
	s.order = order
	return nil
}

// flatten merges a profile with its ancestors
func flatten(declared map[string]Profile, key string, seen []string) (*Profile, error) {
	for _, k := range seen {
		if k == key {
			return nil, fmt.Errorf("profile %q: extends cycle %s", declared[seen[0]].Name, strings.Join(append(seen, key), " -> "))
		}
	}

	p, ok := declared[key]
	if !ok {
		return nil, fmt.Errorf("profile %q extends unknown profile %q", declared[seen[len(seen)-1]].Name, key)
	}

	out := p
	out.Rules = append([]string(nil), p.Rules...)
	if p.Extends == "" {
		return &out, nil
	}

	parent, err := flatten(declared, strings.ToLower(strings.TrimSpace(p.Extends)), append(seen, key))
	if err != nil {
		return nil, err
	}

	out.Rules = mergeIDs(parent.Rules, p.Rules)
	if len(out.SchemaFragments) == 0 {
		out.SchemaFragments = parent.SchemaFragments
	}
	if len(out.MandatoryConcepts) == 0 {
		out.MandatoryConcepts = parent.MandatoryConcepts
	}
	if len(parent.SeverityOverrides) > 0 {
		merged := make(map[string]string, len(parent.SeverityOverrides)+len(p.SeverityOverrides))
		for k, v := range parent.SeverityOverrides {
			merged[k] = v
		}
		for k, v := range p.SeverityOverrides {
			merged[k] = v
		}
		out.SeverityOverrides = merged
	}

	return &out, nil
}

// mergeIDs appends ids not already present, keeping first occurrence order
func mergeIDs(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	var out []string
	for _, id := range append(append([]string(nil), base...), extra...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Lookup returns the flattened profile with the given name, ignoring case
func (s *ProfileSet) Lookup(name string) (*Profile, bool) {
	p, ok := s.resolved[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Names returns the declared profile names in declaration order
func (s *ProfileSet) Names() []string {
	names := make([]string, 0, len(s.order))
	for _, key := range s.order {
		names = append(names, s.declared[key].Name)
	}
	return names
}

// Profiles returns the flattened profiles in declaration order
func (s *ProfileSet) Profiles() []*Profile {
	out := make([]*Profile, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.resolved[key])
	}
	return out
}

// Validate checks every profile against a catalog: rule ids and severity
// overrides must name registered rules, and concept kinds must be known.
func (s *ProfileSet) Validate(c *Catalog) error {
	var errs []error

	for _, p := range s.Profiles() {
		for _, id := range p.Rules {
			if _, ok := c.Get(id); !ok {
				errs = append(errs, fmt.Errorf("profile %q: unknown rule %q", p.Name, id))
			}
		}

		ids := make([]string, 0, len(p.SeverityOverrides))
		for id := range p.SeverityOverrides {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if _, ok := c.Get(id); !ok {
				errs = append(errs, fmt.Errorf("profile %q: severity override for unknown rule %q", p.Name, id))
			}
			if _, err := model.ParseSeverity(p.SeverityOverrides[id]); err != nil {
				errs = append(errs, fmt.Errorf("profile %q: %w", p.Name, err))
			}
		}

		for _, mc := range p.MandatoryConcepts {
			if strings.TrimSpace(mc.Name) == "" {
				errs = append(errs, fmt.Errorf("profile %q: mandatory concept without a name", p.Name))
			}
			if !mc.Kind.valid() {
				errs = append(errs, fmt.Errorf("profile %q: concept %s has unknown kind %q", p.Name, mc.Name, mc.Kind))
			}
		}
	}

	return errors.Join(errs...)
}
