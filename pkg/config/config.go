// Package config defines mdview configuration types and defaults.
// These types are plain data; loading and merging live in internal/configloader.
package config

import "time"

// Defaults for the recognized options.
const (
	DefaultMaxCacheEntries             = 50
	DefaultMaxCacheMemoryBytes         = 100 << 20
	DefaultCacheMemoryCeilingBytes     = 1 << 30
	DefaultCacheEntryTTL               = 30 * time.Minute
	DefaultCacheSweepInterval          = time.Minute
	DefaultInitialRenderLines          = 300
	DefaultProgressiveBatchLines       = 200
	DefaultProgressiveBatchDelay       = 10 * time.Millisecond
	DefaultLargeDocumentThresholdLines = 200
	DefaultOverScanCount               = 5
	DefaultMaxNestDepth                = 20
	DefaultLogLevel                    = "info"
)

// OutputFormat selects how `mdview parse` prints a tree.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// IsValid reports whether the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// ColorMode controls styled terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid reports whether the mode is known.
func (m ColorMode) IsValid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// Config is the root configuration structure for mdview.
type Config struct {
	// MaxCacheEntries bounds the number of cached trees.
	MaxCacheEntries int `yaml:"max_cache_entries,omitempty"`

	// MaxCacheMemoryBytes bounds the summed size estimate of cached trees.
	MaxCacheMemoryBytes int64 `yaml:"max_cache_memory_bytes,omitempty"`

	// CacheMemoryCeilingBytes is the process memory above which half the
	// cache is dropped.
	CacheMemoryCeilingBytes int64 `yaml:"cache_memory_ceiling_bytes,omitempty"`

	// CacheEntryTTL is how long a cached tree lives.
	CacheEntryTTL time.Duration `yaml:"cache_entry_ttl,omitempty"`

	// CacheSweepInterval is the minimum time between expiry sweeps.
	CacheSweepInterval time.Duration `yaml:"cache_sweep_interval,omitempty"`

	// EnableProgressiveRendering parses large documents in growing prefixes.
	EnableProgressiveRendering *bool `yaml:"enable_progressive_rendering,omitempty"`

	// InitialRenderLines is the prefix parsed for the first render.
	InitialRenderLines int `yaml:"initial_render_lines,omitempty"`

	// ProgressiveBatchLines is how many lines each growth step adds.
	ProgressiveBatchLines int `yaml:"progressive_batch_lines,omitempty"`

	// ProgressiveBatchDelay is the pause between growth steps.
	ProgressiveBatchDelay time.Duration `yaml:"progressive_batch_delay,omitempty"`

	// LargeDocumentThresholdLines is the line count above which a document
	// is loaded progressively.
	LargeDocumentThresholdLines int `yaml:"large_document_threshold_lines,omitempty"`

	// OverScanCount is the number of blocks realized beyond the viewport on
	// each side.
	OverScanCount int `yaml:"over_scan_count,omitempty"`

	// MaxNestDepth bounds inline container nesting.
	MaxNestDepth int `yaml:"max_nest_depth,omitempty"`

	// AlignmentDirectives enables "->text<-" and "->text->" paragraphs.
	AlignmentDirectives *bool `yaml:"alignment_directives,omitempty"`

	// DetectLanguage names the language of fences without an info string.
	DetectLanguage *bool `yaml:"detect_language,omitempty"`

	// ResourceRoot resolves relative image and link targets.
	ResourceRoot string `yaml:"resource_root,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Ignore contains glob patterns for files skipped by `mdview stats`.
	Ignore []string `yaml:"ignore,omitempty"`

	// CLI-level options (not persisted to config files).

	// Format is the output format of `mdview parse`.
	Format OutputFormat `yaml:"-"`

	// Color controls styled output.
	Color ColorMode `yaml:"-"`

	// Jobs is the number of concurrent workers for multi-file commands.
	Jobs int `yaml:"-"`
}

// NewConfig returns a Config with every option set to its default.
func NewConfig() *Config {
	return &Config{
		MaxCacheEntries:             DefaultMaxCacheEntries,
		MaxCacheMemoryBytes:         DefaultMaxCacheMemoryBytes,
		CacheMemoryCeilingBytes:     DefaultCacheMemoryCeilingBytes,
		CacheEntryTTL:               DefaultCacheEntryTTL,
		CacheSweepInterval:          DefaultCacheSweepInterval,
		EnableProgressiveRendering:  Bool(true),
		InitialRenderLines:          DefaultInitialRenderLines,
		ProgressiveBatchLines:       DefaultProgressiveBatchLines,
		ProgressiveBatchDelay:       DefaultProgressiveBatchDelay,
		LargeDocumentThresholdLines: DefaultLargeDocumentThresholdLines,
		OverScanCount:               DefaultOverScanCount,
		MaxNestDepth:                DefaultMaxNestDepth,
		AlignmentDirectives:         Bool(false),
		DetectLanguage:              Bool(true),
		LogLevel:                    DefaultLogLevel,
		Format:                      FormatText,
		Color:                       ColorAuto,
		Jobs:                        0, // 0 means use GOMAXPROCS
	}
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Progressive reports whether progressive rendering is enabled.
func (c *Config) Progressive() bool {
	return c.EnableProgressiveRendering == nil || *c.EnableProgressiveRendering
}

// Alignment reports whether alignment directives are enabled.
func (c *Config) Alignment() bool {
	return c.AlignmentDirectives != nil && *c.AlignmentDirectives
}

// Detection reports whether fence language detection is enabled.
func (c *Config) Detection() bool {
	return c.DetectLanguage == nil || *c.DetectLanguage
}
