package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/mdview/pkg/config"
)

// envVarPrefix is the prefix for all mdview environment variables.
const envVarPrefix = "MDVIEW_"

// envMapping binds one environment variable to a config field.
type envMapping struct {
	description string
	apply       func(cfg *config.Config, value string) error
}

func intField(set func(*config.Config, int)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		set(cfg, i)
		return nil
	}
}

func bytesField(set func(*config.Config, int64)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid byte count %q", value)
		}
		set(cfg, i)
		return nil
	}
}

func durationField(set func(*config.Config, time.Duration)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q (expected e.g. 30m, 10ms)", value)
		}
		set(cfg, d)
		return nil
	}
}

func boolField(set func(*config.Config, *bool)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", value)
		}
		set(cfg, config.Bool(b))
		return nil
	}
}

func stringField(set func(*config.Config, string)) func(*config.Config, string) error {
	return func(cfg *config.Config, value string) error {
		set(cfg, value)
		return nil
	}
}

// envMappings maps environment variable names (without prefix) to config fields.
func envMappings() map[string]envMapping {
	return map[string]envMapping{
		"MAX_CACHE_ENTRIES": {"Maximum cached documents", intField(func(c *config.Config, v int) {
			c.MaxCacheEntries = v
		})},
		"MAX_CACHE_MEMORY_BYTES": {"Cache memory budget in bytes", bytesField(func(c *config.Config, v int64) {
			c.MaxCacheMemoryBytes = v
		})},
		"CACHE_MEMORY_CEILING_BYTES": {"Process memory ceiling in bytes", bytesField(func(c *config.Config, v int64) {
			c.CacheMemoryCeilingBytes = v
		})},
		"CACHE_ENTRY_TTL": {"Cache entry lifetime (e.g. 30m)", durationField(func(c *config.Config, v time.Duration) {
			c.CacheEntryTTL = v
		})},
		"CACHE_SWEEP_INTERVAL": {"Minimum time between cache sweeps", durationField(func(c *config.Config, v time.Duration) {
			c.CacheSweepInterval = v
		})},
		"ENABLE_PROGRESSIVE_RENDERING": {"Progressive rendering: true or false", boolField(func(c *config.Config, v *bool) {
			c.EnableProgressiveRendering = v
		})},
		"INITIAL_RENDER_LINES": {"Lines in the first progressive render", intField(func(c *config.Config, v int) {
			c.InitialRenderLines = v
		})},
		"PROGRESSIVE_BATCH_LINES": {"Lines added per progressive step", intField(func(c *config.Config, v int) {
			c.ProgressiveBatchLines = v
		})},
		"PROGRESSIVE_BATCH_DELAY": {"Pause between progressive steps", durationField(func(c *config.Config, v time.Duration) {
			c.ProgressiveBatchDelay = v
		})},
		"LARGE_DOCUMENT_THRESHOLD_LINES": {"Line count that triggers progressive loading", intField(func(c *config.Config, v int) {
			c.LargeDocumentThresholdLines = v
		})},
		"OVER_SCAN_COUNT": {"Blocks realized beyond the viewport", intField(func(c *config.Config, v int) {
			c.OverScanCount = v
		})},
		"MAX_NEST_DEPTH": {"Deepest inline formatting nesting", intField(func(c *config.Config, v int) {
			c.MaxNestDepth = v
		})},
		"ALIGNMENT_DIRECTIVES": {"Alignment directives: true or false", boolField(func(c *config.Config, v *bool) {
			c.AlignmentDirectives = v
		})},
		"DETECT_LANGUAGE": {"Code fence language detection: true or false", boolField(func(c *config.Config, v *bool) {
			c.DetectLanguage = v
		})},
		"RESOURCE_ROOT": {"Root for relative image references", stringField(func(c *config.Config, v string) {
			c.ResourceRoot = v
		})},
		"LOG_LEVEL": {"Log level: debug, info, warn or error", stringField(func(c *config.Config, v string) {
			c.LogLevel = v
		})},
		"FORMAT": {"Output format: text, json or yaml", stringField(func(c *config.Config, v string) {
			c.Format = config.OutputFormat(v)
		})},
		"JOBS": {"Number of parallel workers (0 = auto)", intField(func(c *config.Config, v int) {
			c.Jobs = v
		})},
		"IGNORE": {"Comma-separated list of ignore patterns", stringField(func(c *config.Config, v string) {
			c.Ignore = parseSliceValue(v)
		})},
	}
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with MDVIEW_ (e.g., MDVIEW_MAX_CACHE_ENTRIES).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for suffix, mapping := range envMappings() {
		envVar := envVarPrefix + suffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := mapping.apply(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", envVar, err)
		}
	}

	return nil
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ListEnvVars returns every supported environment variable with its
// description, sorted by name.
func ListEnvVars() [][2]string {
	mappings := envMappings()
	vars := make([][2]string, 0, len(mappings))
	for suffix, mapping := range mappings {
		vars = append(vars, [2]string{envVarPrefix + suffix, mapping.description})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i][0] < vars[j][0] })
	return vars
}
