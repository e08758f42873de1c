// Package validate runs the rule catalog over parsed filings and produces
// deterministic reports.
package validate

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ppiankov/ixbrlcheck/internal/document"
	"github.com/ppiankov/ixbrlcheck/internal/extract"
	"github.com/ppiankov/ixbrlcheck/internal/logger"
	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/rules"
	"github.com/ppiankov/ixbrlcheck/internal/worker"
	"github.com/ppiankov/ixbrlcheck/internal/xmltree"
)

// documentNamespace scopes the name-based document ids
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ppiankov/ixbrlcheck/document"))

// Finding stages, in report order
const (
	stageConfig = iota
	stageRegistry
	stageRules
)

// Options configures an Engine. Zero values select the built-in defaults.
type Options struct {
	Workers        int               // Concurrent rule evaluations, default 1
	Parser         string            // Provider name, default "xml"
	DefaultProfile string            // Used when a request names no profile, default "generic"
	Catalog        *rules.Catalog    // Default: rules.DefaultCatalog()
	Profiles       *rules.ProfileSet // Default: rules.DefaultProfiles()
	Providers      *xmltree.Registry // Default: xmltree.NewRegistry()
	Logger         *logger.Logger    // Optional
}

// Request is a single validation request
type Request struct {
	Raw     []byte
	Profile string // Profile name, case-insensitive; empty selects the default
	Parser  string // Provider name; empty selects the engine's parser
	Source  string // Label copied into the report
}

// Engine validates filings. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	pool           *worker.Pool
	parser         string
	defaultProfile string
	catalog        *rules.Catalog
	profiles       *rules.ProfileSet
	providers      *xmltree.Registry
	log            *logger.Logger
}

// NewEngine creates an engine. It fails when the profiles reference rules
// the catalog does not know, or when the default profile does not exist.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		opts.Catalog = rules.DefaultCatalog()
	}
	if opts.Profiles == nil {
		profiles, err := rules.DefaultProfiles()
		if err != nil {
			return nil, err
		}
		opts.Profiles = profiles
	}
	if opts.Providers == nil {
		opts.Providers = xmltree.NewRegistry()
	}
	if opts.Parser == "" {
		opts.Parser = "xml"
	}
	if opts.DefaultProfile == "" {
		opts.DefaultProfile = rules.GenericProfile
	}

	if err := opts.Profiles.Validate(opts.Catalog); err != nil {
		return nil, fmt.Errorf("invalid profiles: %w", err)
	}
	if _, ok := opts.Profiles.Lookup(rules.GenericProfile); !ok {
		return nil, fmt.Errorf("profile %q is not defined", rules.GenericProfile)
	}
	if _, ok := opts.Profiles.Lookup(opts.DefaultProfile); !ok {
		return nil, fmt.Errorf("default profile %q is not defined", opts.DefaultProfile)
	}
	if _, ok := opts.Providers.Get(opts.Parser); !ok {
		return nil, fmt.Errorf("unknown parser %q (available: %v)", opts.Parser, opts.Providers.Names())
	}

	return &Engine{
		pool:           worker.NewPool(opts.Workers),
		parser:         opts.Parser,
		defaultProfile: opts.DefaultProfile,
		catalog:        opts.Catalog,
		profiles:       opts.Profiles,
		providers:      opts.Providers,
		log:            opts.Logger,
	}, nil
}

// Catalog returns the rule catalog
func (e *Engine) Catalog() *rules.Catalog {
	return e.catalog
}

// Profiles returns the configured profiles
func (e *Engine) Profiles() *rules.ProfileSet {
	return e.profiles
}

// Parser returns the default provider name
func (e *Engine) Parser() string {
	return e.parser
}

// Providers returns the tree provider registry
func (e *Engine) Providers() *xmltree.Registry {
	return e.providers
}

// DefaultProfile returns the profile used when a request names none
func (e *Engine) DefaultProfile() string {
	return e.defaultProfile
}

// Validate validates raw filing bytes against a profile with the default parser
func (e *Engine) Validate(ctx context.Context, raw []byte, profile string) (*model.Report, error) {
	return e.Run(ctx, Request{Raw: raw, Profile: profile})
}

// Run validates a request. Document defects never produce an error: they
// are reported as findings. The only error is the context's.
func (e *Engine) Run(ctx context.Context, req Request) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &model.Report{
		DocumentID: DocumentID(req.Raw),
		Source:     req.Source,
		Findings:   []model.Finding{},
	}

	profile, known := e.resolveProfile(req.Profile)
	report.Profile = profile.Name

	// Stage 1: parse
	e.log.Section("Parse")
	parser := req.Parser
	if parser == "" {
		parser = e.parser
	}
	provider := e.providers.FindProvider(parser, "")
	root, err := provider.Parse(bytes.NewReader(req.Raw))
	if err != nil {
		e.log.Debug("%s parser failed: %v", provider.Name(), err)
		report.Findings = []model.Finding{{
			RuleID:   model.FindingParseError,
			Severity: model.SeverityFatal,
			Message:  fmt.Sprintf("document could not be parsed: %v", err),
			Subject:  &model.Subject{Kind: model.SubjectDocument},
		}}
		e.finish(report)
		return report, nil
	}

	// Stages 2-4: registry, facts, model
	doc := document.Assemble(
		extract.NewRegistryBuilder().Build(root),
		extract.NewFactExtractor().Extract(root),
		extract.SchemaRefs(root),
	)
	report.Stats = doc.Stats()
	e.log.Debug("%d contexts, %d units, %d facts, %d schema refs",
		report.Stats.Contexts, report.Stats.Units, report.Stats.Facts, report.Stats.SchemaRefs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var findings []staged

	// Stage 5: profile
	if !known {
		report.RequestedProfile = req.Profile
		e.log.Warn("unknown profile %q, falling back to %s", req.Profile, profile.Name)
		findings = append(findings, staged{
			stage: stageConfig,
			finding: model.Finding{
				RuleID:   model.FindingUnknownProfile,
				Severity: model.SeverityWarning,
				Message:  fmt.Sprintf("unknown profile %q; validated with %q", req.Profile, profile.Name),
			},
		})
	}

	for _, f := range doc.RegistryFindings() {
		findings = append(findings, staged{stage: stageRegistry, order: registryOrder(f), finding: f})
	}

	// Stage 6: rules
	e.log.Section("Rules")
	ruleFindings, err := e.evaluate(ctx, doc, profile)
	if err != nil {
		return nil, err
	}
	findings = append(findings, ruleFindings...)

	// Stage 7: merge
	report.Findings = sortFindings(findings)
	e.finish(report)

	return report, nil
}

// resolveProfile looks up a profile, falling back to generic
func (e *Engine) resolveProfile(name string) (*rules.Profile, bool) {
	if name == "" {
		p, _ := e.profiles.Lookup(e.defaultProfile)
		return p, true
	}
	if p, ok := e.profiles.Lookup(name); ok {
		return p, true
	}
	p, _ := e.profiles.Lookup(rules.GenericProfile)
	return p, false
}

// evaluate runs every rule of the profile on the worker pool
func (e *Engine) evaluate(ctx context.Context, doc *document.Document, profile *rules.Profile) ([]staged, error) {
	active := e.catalog.Resolve(profile)

	jobs := make([]worker.Job, len(active))
	for i, rule := range active {
		jobs[i] = &RuleJob{Rule: rule, Document: doc}
	}

	var findings []staged
	for i, result := range e.pool.Run(ctx, jobs) {
		if err := result.GetError(); err != nil {
			return nil, err
		}
		rr := result.(*RuleResult)
		e.log.Debug("%s: %d findings", rr.RuleID, len(rr.Findings))

		order := e.catalog.Position(active[i].ID())
		for _, f := range rr.Findings {
			findings = append(findings, staged{stage: stageRules, order: order, finding: f})
		}
	}

	return findings, nil
}

// finish computes the summary and validity of a report
func (e *Engine) finish(report *model.Report) {
	report.Summary = model.Summarize(report.Findings)
	report.Valid = model.IsValid(report.Findings)
	e.log.Info("%s: %s (%d findings)", report.Profile, report.Status(), report.Summary.Total)
}

// DocumentID returns the name-based UUID of raw filing bytes
func DocumentID(raw []byte) string {
	return uuid.NewSHA1(documentNamespace, raw).String()
}

// staged is a finding with its sort keys
type staged struct {
	stage   int
	order   int
	finding model.Finding
}

// registryOrder places context duplicates before unit duplicates
func registryOrder(f model.Finding) int {
	if f.Subject != nil && f.Subject.Kind == model.SubjectUnit {
		return 1
	}
	return 0
}

// sortFindings orders findings by stage, then rule order, then subject
// document order. The sort is stable so ties keep emission order.
func sortFindings(findings []staged) []model.Finding {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.stage != b.stage {
			return a.stage < b.stage
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return subjectIndex(a.finding) < subjectIndex(b.finding)
	})

	out := make([]model.Finding, len(findings))
	for i, s := range findings {
		out[i] = s.finding
	}
	return out
}

func subjectIndex(f model.Finding) int {
	if f.Subject == nil {
		return -1
	}
	return f.Subject.Index
}
