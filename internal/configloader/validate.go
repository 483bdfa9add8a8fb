package configloader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/mdview/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the yaml key of the invalid field (e.g., "max_cache_entries").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// knownLogLevels lists valid log_level values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// maxSaneNestDepth is where deeper inline nesting stops being readable.
const maxSaneNestDepth = 100

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	positive := []struct {
		field string
		value int64
	}{
		{"max_cache_entries", int64(cfg.MaxCacheEntries)},
		{"max_cache_memory_bytes", cfg.MaxCacheMemoryBytes},
		{"initial_render_lines", int64(cfg.InitialRenderLines)},
		{"progressive_batch_lines", int64(cfg.ProgressiveBatchLines)},
		{"large_document_threshold_lines", int64(cfg.LargeDocumentThresholdLines)},
		{"max_nest_depth", int64(cfg.MaxNestDepth)},
	}
	for _, p := range positive {
		if p.value < 0 {
			result.fail(p.field, p.value, "must not be negative")
		}
	}

	if cfg.CacheEntryTTL < 0 {
		result.fail("cache_entry_ttl", cfg.CacheEntryTTL, "must not be negative")
	}
	if cfg.CacheSweepInterval < 0 {
		result.fail("cache_sweep_interval", cfg.CacheSweepInterval, "must not be negative")
	}
	if cfg.ProgressiveBatchDelay < 0 {
		result.fail("progressive_batch_delay", cfg.ProgressiveBatchDelay, "must not be negative")
	}
	if cfg.OverScanCount < 0 {
		result.fail("over_scan_count", cfg.OverScanCount, "must be >= 0")
	}
	if cfg.Jobs < 0 {
		result.fail("jobs", cfg.Jobs, "jobs must be >= 0 (0 means auto)")
	}

	if cfg.CacheMemoryCeilingBytes > 0 && cfg.CacheMemoryCeilingBytes < cfg.MaxCacheMemoryBytes {
		result.warn("cache_memory_ceiling_bytes", cfg.CacheMemoryCeilingBytes,
			"ceiling is below max_cache_memory_bytes; the cache will be halved before it fills")
	}
	if cfg.MaxNestDepth > maxSaneNestDepth {
		result.warn("max_nest_depth", cfg.MaxNestDepth, "values above %d are rarely useful", maxSaneNestDepth)
	}

	if cfg.LogLevel != "" && !knownLogLevels[strings.ToLower(cfg.LogLevel)] {
		result.fail("log_level", cfg.LogLevel,
			"invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel)
	}
	if cfg.Format != "" && !cfg.Format.IsValid() {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json, yaml", cfg.Format)
	}
	if cfg.Color != "" && !cfg.Color.IsValid() {
		result.fail("color", cfg.Color, "invalid color mode %q; must be one of: auto, always, never", cfg.Color)
	}

	validateIgnorePatterns(cfg, result)

	return result
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		// filepath.Match returns an error only for malformed patterns
		if _, err := filepath.Match(pattern, ""); err != nil {
			result.fail(fmt.Sprintf("ignore[%d]", i), pattern, "invalid glob pattern: %v", err)
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidLogLevel returns true if the level string is valid.
func IsValidLogLevel(level string) bool {
	return knownLogLevels[strings.ToLower(level)]
}
