package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/ixbrlcheck/internal/logger"
	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/validate"
)

const (
	completePath   = "testdata/complete.xhtml"
	undeclaredPath = "testdata/undeclared-unit.xhtml"
)

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Engine.Workers = 2
	cfg.Cache.Dir = t.TempDir()
	cfg.Output.Color = false
	return cfg
}

func newTestPipeline(t *testing.T, cfg *model.Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}
	return p
}

// recorder collects saved reports
type recorder struct {
	mu      sync.Mutex
	reports []*model.Report
	err     error
}

func (r *recorder) Save(ctx context.Context, report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.reports = append(r.reports, report)
	return nil
}

func TestPipeline_ValidateFile(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	p.SetProfile("esef")

	report, err := p.ValidateFile(context.Background(), completePath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !report.Valid {
		t.Errorf("Expected valid report, got findings %v", report.Findings)
	}
	if report.Profile != "ESEF" {
		t.Errorf("Expected profile ESEF, got %s", report.Profile)
	}
	if report.Source != "complete.xhtml" {
		t.Errorf("Expected source complete.xhtml, got %s", report.Source)
	}

	want := model.Stats{Contexts: 2, Units: 1, Facts: 7, Numeric: 2, SchemaRefs: 1}
	if report.Stats != want {
		t.Errorf("Expected stats %+v, got %+v", want, report.Stats)
	}
}

func TestPipeline_UndeclaredUnit(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))

	report, err := p.ValidateFile(context.Background(), undeclaredPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if report.Valid {
		t.Error("Expected invalid report")
	}
	if len(report.Findings) != 1 || report.Findings[0].RuleID != "fact.missing_unit_ref" {
		t.Fatalf("Expected a single fact.missing_unit_ref finding, got %v", report.Findings)
	}
	if !strings.Contains(report.Findings[0].Message, "U1") {
		t.Errorf("Expected message to name U1, got %q", report.Findings[0].Message)
	}
}

func TestPipeline_CachedMatchesUncached(t *testing.T) {
	cfg := testConfig(t)
	cached := newTestPipeline(t, cfg)

	uncachedCfg := testConfig(t)
	uncachedCfg.Cache.Enabled = false
	uncached := newTestPipeline(t, uncachedCfg)

	for _, path := range []string{completePath, undeclaredPath} {
		for _, profile := range []string{"ESEF", "generic", "no-such-profile"} {
			cached.SetProfile(profile)
			uncached.SetProfile(profile)

			first, err := cached.ValidateFile(context.Background(), path)
			if err != nil {
				t.Fatalf("%s/%s: first run failed: %v", path, profile, err)
			}
			second, err := cached.ValidateFile(context.Background(), path)
			if err != nil {
				t.Fatalf("%s/%s: cached run failed: %v", path, profile, err)
			}
			fresh, err := uncached.ValidateFile(context.Background(), path)
			if err != nil {
				t.Fatalf("%s/%s: uncached run failed: %v", path, profile, err)
			}

			if !reflect.DeepEqual(first, second) {
				t.Errorf("%s/%s: cached report differs:\n%+v\n%+v", path, profile, first, second)
			}
			if !reflect.DeepEqual(second, fresh) {
				t.Errorf("%s/%s: cached and uncached reports differ:\n%+v\n%+v", path, profile, second, fresh)
			}
		}
	}
}

func TestPipeline_CacheSurvivesRestart(t *testing.T) {
	cfg := testConfig(t)
	raw, err := os.ReadFile(completePath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	first := newTestPipeline(t, cfg)
	req := validate.Request{Raw: raw, Profile: "ESEF", Source: "a.xhtml"}
	if _, err := first.Validate(context.Background(), req); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	second := newTestPipeline(t, cfg)
	if _, ok := second.cache.Get(second.cacheKey(req)); !ok {
		t.Fatal("Expected report in the disk cache")
	}

	// The source label is not part of the key
	req.Source = "b.xhtml"
	report, err := second.Validate(context.Background(), req)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if report.Source != "b.xhtml" {
		t.Errorf("Expected source b.xhtml on a cache hit, got %s", report.Source)
	}
}

func TestPipeline_CacheKeyCoversSettings(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	raw := []byte("<html/>")

	base := p.cacheKey(validate.Request{Raw: raw})
	if base != p.cacheKey(validate.Request{Raw: raw, Profile: "generic", Parser: "XML"}) {
		t.Error("Expected empty profile and parser to key like the defaults")
	}
	if base == p.cacheKey(validate.Request{Raw: raw, Parser: "html"}) {
		t.Error("Expected parser to change the key")
	}
	if base == p.cacheKey(validate.Request{Raw: raw, Profile: "ESEF"}) {
		t.Error("Expected profile to change the key")
	}

	dir := t.TempDir()
	profilesPath := filepath.Join(dir, "profiles.yaml")
	overrides := `profiles:
  - name: ESEF
    extends: generic
    schema_fragments: ["example.com/taxonomy"]
`
	if err := os.WriteFile(profilesPath, []byte(overrides), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg := testConfig(t)
	cfg.Engine.ProfilesFile = profilesPath
	custom := newTestPipeline(t, cfg)

	if custom.cacheKey(validate.Request{Raw: raw}) == base {
		t.Error("Expected a different profile set to change the key")
	}
}

func TestPipeline_InputTooLarge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Parser.MaxBytes = 64
	p := newTestPipeline(t, cfg)

	if _, err := p.ValidateFile(context.Background(), completePath); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Expected ErrInputTooLarge from ValidateFile, got %v", err)
	}

	big := bytes.Repeat([]byte("x"), 65)
	if _, err := p.ValidateReader(context.Background(), bytes.NewReader(big), validate.Request{}); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Expected ErrInputTooLarge from ValidateReader, got %v", err)
	}
	if _, err := p.Validate(context.Background(), validate.Request{Raw: big}); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Expected ErrInputTooLarge from Validate, got %v", err)
	}
}

func TestReadLimited(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		limit   int64
		wantErr bool
	}{
		{"under", 10, 20, false},
		{"exact", 20, 20, false},
		{"over", 21, 20, true},
		{"unlimited", 1000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadLimited(bytes.NewReader(make([]byte, tt.size)), tt.limit)
			if tt.wantErr {
				if !errors.Is(err, ErrInputTooLarge) {
					t.Errorf("Expected ErrInputTooLarge, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(data) != tt.size {
				t.Errorf("Expected %d bytes, got %d", tt.size, len(data))
			}
		})
	}
}

func TestPipeline_ParseFailureIsAReport(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))

	report, err := p.ValidateReader(context.Background(), strings.NewReader("<html><body>"), validate.Request{Source: "broken"})
	if err != nil {
		t.Fatalf("Expected a report, got error %v", err)
	}
	if report.Summary.Fatal != 1 || report.Status() != "FATAL" {
		t.Errorf("Expected a single fatal finding, got %+v", report.Summary)
	}
}

func TestPipeline_Recorder(t *testing.T) {
	p := newTestPipeline(t, testConfig(t))
	rec := &recorder{}
	p.SetRecorder(rec)

	// Cache hits are recorded too
	for i := 0; i < 2; i++ {
		if _, err := p.ValidateFile(context.Background(), completePath); err != nil {
			t.Fatalf("ValidateFile failed: %v", err)
		}
	}
	if len(rec.reports) != 2 {
		t.Errorf("Expected 2 recorded reports, got %d", len(rec.reports))
	}

	rec.err = errors.New("disk full")
	if _, err := p.ValidateFile(context.Background(), completePath); err == nil {
		t.Error("Expected recorder error to surface")
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Enabled = false
	p := newTestPipeline(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.ValidateFile(ctx, completePath); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNewPipeline_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine.ProfilesFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewPipeline(cfg, nil); err == nil {
		t.Error("Expected error for a missing profiles file")
	}

	cfg = testConfig(t)
	cfg.Parser.Mode = "sgml"
	if _, err := NewPipeline(cfg, nil); err == nil {
		t.Error("Expected error for an unknown parser")
	}
}
