package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds all ixbrlcheck configuration
type Config struct {
	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`
	Parser ParserConfig `mapstructure:"parser" yaml:"parser"`
	Cache  CacheConfig  `mapstructure:"cache" yaml:"cache"`
	Batch  BatchConfig  `mapstructure:"batch" yaml:"batch"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

// EngineConfig controls rule evaluation
type EngineConfig struct {
	Workers        int    `mapstructure:"workers" yaml:"workers"`                 // Concurrent rule evaluations per document
	DefaultProfile string `mapstructure:"default_profile" yaml:"default_profile"` // Used when no --profile is given
	ProfilesFile   string `mapstructure:"profiles_file" yaml:"profiles_file"`     // Optional YAML/TOML profile overrides
}

// ParserConfig controls how filings are read and parsed
type ParserConfig struct {
	Mode     string `mapstructure:"mode" yaml:"mode"`           // xml (strict) or html (lenient)
	MaxBytes int64  `mapstructure:"max_bytes" yaml:"max_bytes"` // Input size limit
}

// CacheConfig controls the report cache
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// BatchConfig controls batch processing
type BatchConfig struct {
	Concurrency    int     `mapstructure:"concurrency" yaml:"concurrency"`
	FilesPerSecond float64 `mapstructure:"files_per_second" yaml:"files_per_second"` // 0 disables rate limiting
	Burst          int     `mapstructure:"burst" yaml:"burst"`
}

// StoreConfig controls the SQLite run history
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"` // Empty disables history
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `mapstructure:"verbose" yaml:"verbose"`
	Color         bool `mapstructure:"color" yaml:"color"`
	IncludeFooter bool `mapstructure:"include_footer" yaml:"include_footer"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "ixbrlcheck-cache")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".ixbrlcheck", "cache")
	}

	return &Config{
		Engine: EngineConfig{
			Workers:        runtime.NumCPU(),
			DefaultProfile: "generic",
		},
		Parser: ParserConfig{
			Mode:     "xml",
			MaxBytes: 100 << 20,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Batch: BatchConfig{
			Concurrency:    runtime.NumCPU(),
			FilesPerSecond: 0,
			Burst:          5,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Output: OutputConfig{
			Color:         true,
			IncludeFooter: true,
		},
	}
}
