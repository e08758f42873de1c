// Package pipeline reads filings, validates them through the engine and
// takes care of caching, history and rendering around it.
package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/ixbrlcheck/internal/cache"
	"github.com/ppiankov/ixbrlcheck/internal/logger"
	"github.com/ppiankov/ixbrlcheck/internal/model"
	"github.com/ppiankov/ixbrlcheck/internal/rules"
	"github.com/ppiankov/ixbrlcheck/internal/validate"
)

// ErrInputTooLarge is returned when a filing exceeds the configured size limit
var ErrInputTooLarge = errors.New("input exceeds size limit")

// Recorder persists validation reports
type Recorder interface {
	Save(ctx context.Context, report *model.Report) error
}

// Pipeline orchestrates read, validate, cache and record for one filing
type Pipeline struct {
	engine   *validate.Engine
	cache    cache.Cache // nil when caching is disabled
	cacheTTL time.Duration
	recorder Recorder // Optional
	renderer *Renderer
	profile  string // Requested profile for ValidateFile
	maxBytes int64
	settings string // Fingerprint of the profile set, part of every cache key
	log      *logger.Logger
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config, log *logger.Logger) (*Pipeline, error) {
	profiles, err := rules.LoadProfiles(cfg.Engine.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	engine, err := validate.NewEngine(validate.Options{
		Workers:        cfg.Engine.Workers,
		Parser:         cfg.Parser.Mode,
		DefaultProfile: cfg.Engine.DefaultProfile,
		Profiles:       profiles,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	settings, err := fingerprint(engine)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		engine:   engine,
		cacheTTL: cfg.Cache.DiskTTL,
		renderer: NewRenderer(cfg.Output.IncludeFooter, cfg.Output.Color),
		maxBytes: cfg.Parser.MaxBytes,
		settings: settings,
		log:      log,
	}

	if cfg.Cache.Enabled {
		p.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		log.Debug("report cache: %s", cfg.Cache.Dir)
	}

	return p, nil
}

// fingerprint hashes the flattened profile set so that editing a profiles
// file invalidates cached reports
func fingerprint(engine *validate.Engine) (string, error) {
	data, err := json.Marshal(engine.Profiles().Profiles())
	if err != nil {
		return "", fmt.Errorf("fingerprint profiles: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// SetProfile sets the profile requested by ValidateFile. Unknown names are
// reported in the report, not rejected here.
func (p *Pipeline) SetProfile(name string) {
	p.profile = name
}

// SetRecorder enables report history
func (p *Pipeline) SetRecorder(r Recorder) {
	p.recorder = r
}

// Engine returns the underlying validation engine
func (p *Pipeline) Engine() *validate.Engine {
	return p.engine
}

// Renderer returns the configured renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// MaxBytes returns the input size limit (0 means unlimited)
func (p *Pipeline) MaxBytes() int64 {
	return p.maxBytes
}

// ValidateFile reads and validates a filing from disk with the pipeline's profile
func (p *Pipeline) ValidateFile(ctx context.Context, path string) (*model.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat filing: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if p.maxBytes > 0 && info.Size() > p.maxBytes {
		return nil, fmt.Errorf("%s (%d bytes, limit %d): %w", path, info.Size(), p.maxBytes, ErrInputTooLarge)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open filing: %w", err)
	}
	defer func() { _ = f.Close() }()

	raw, err := ReadLimited(f, p.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return p.Validate(ctx, validate.Request{
		Raw:     raw,
		Profile: p.profile,
		Source:  filepath.Base(path),
	})
}

// ValidateReader reads a filing from r, enforcing the size limit, and validates it
func (p *Pipeline) ValidateReader(ctx context.Context, r io.Reader, req validate.Request) (*model.Report, error) {
	raw, err := ReadLimited(r, p.maxBytes)
	if err != nil {
		return nil, err
	}
	req.Raw = raw
	return p.Validate(ctx, req)
}

// Validate validates an in-memory filing, consulting the cache first.
// Successful reports are cached and, when a recorder is set, recorded.
func (p *Pipeline) Validate(ctx context.Context, req validate.Request) (*model.Report, error) {
	if p.maxBytes > 0 && int64(len(req.Raw)) > p.maxBytes {
		return nil, fmt.Errorf("%d bytes, limit %d: %w", len(req.Raw), p.maxBytes, ErrInputTooLarge)
	}

	key := p.cacheKey(req)
	report, hit := p.cached(key, req.Source)
	if !hit {
		var err error
		report, err = p.engine.Run(ctx, req)
		if err != nil {
			return nil, err
		}
		p.store(key, report)
	}

	if p.recorder != nil {
		if err := p.recorder.Save(ctx, report); err != nil {
			return nil, fmt.Errorf("record report: %w", err)
		}
	}

	return report, nil
}

// cacheKey covers everything except the source label, which is restored on a hit
func (p *Pipeline) cacheKey(req validate.Request) string {
	profile := req.Profile
	if strings.TrimSpace(profile) == "" {
		profile = p.engine.DefaultProfile()
	}
	parser := req.Parser
	if parser == "" {
		parser = p.engine.Parser()
	}
	return cache.ReportKey(req.Raw, profile, strings.ToLower(parser), p.settings)
}

func (p *Pipeline) cached(key, source string) (*model.Report, bool) {
	if p.cache == nil {
		return nil, false
	}

	data, ok := p.cache.Get(key)
	if !ok {
		return nil, false
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		p.log.Warn("discarding unreadable cache entry: %v", err)
		_ = p.cache.Delete(key)
		return nil, false
	}
	report.Source = source

	p.log.Debug("cache hit for %s", report.DocumentID)
	return &report, true
}

func (p *Pipeline) store(key string, report *model.Report) {
	if p.cache == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		p.log.Warn("cache report: %v", err)
		return
	}
	if err := p.cache.Set(key, data, p.cacheTTL); err != nil {
		p.log.Warn("cache report: %v", err)
	}
}

// ReadLimited reads r completely, failing with ErrInputTooLarge when it holds
// more than limit bytes. A non-positive limit disables the check.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, fmt.Errorf("more than %d bytes: %w", limit, ErrInputTooLarge)
	}
	return buf.Bytes(), nil
}

// RenderReport writes the requested report files and prints the terminal summary
func (p *Pipeline) RenderReport(w io.Writer, report *model.Report, jsonPath, mdPath, xlsxPath string) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.log.Info("✓ Wrote JSON: %s", jsonPath)
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.log.Info("✓ Wrote Markdown: %s", mdPath)
	}

	if xlsxPath != "" {
		if err := p.renderer.RenderXLSX(report, xlsxPath); err != nil {
			return fmt.Errorf("render XLSX: %w", err)
		}
		p.log.Info("✓ Wrote XLSX: %s", xlsxPath)
	}

	p.renderer.RenderSummary(w, report)

	return nil
}
