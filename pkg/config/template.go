package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

type templateEntry struct {
	key     string
	comment string
	value   any
}

func templateEntries(cfg *Config) []templateEntry {
	return []templateEntry{
		{"max_cache_entries", "Maximum number of parsed documents kept in memory", cfg.MaxCacheEntries},
		{"max_cache_memory_bytes", "Memory budget for cached documents, in bytes", cfg.MaxCacheMemoryBytes},
		{"cache_memory_ceiling_bytes", "Process memory above which half the cache is dropped", cfg.CacheMemoryCeilingBytes},
		{"cache_entry_ttl", "How long a cached document stays valid", cfg.CacheEntryTTL.String()},
		{"cache_sweep_interval", "Minimum time between sweeps of expired entries", cfg.CacheSweepInterval.String()},
		{"enable_progressive_rendering", "Parse large documents in growing prefixes", cfg.Progressive()},
		{"initial_render_lines", "Lines parsed for the first render of a large document", cfg.InitialRenderLines},
		{"progressive_batch_lines", "Lines added by each progressive step", cfg.ProgressiveBatchLines},
		{"progressive_batch_delay", "Pause between progressive steps", cfg.ProgressiveBatchDelay.String()},
		{"large_document_threshold_lines", "Documents longer than this load progressively", cfg.LargeDocumentThresholdLines},
		{"over_scan_count", "Blocks realized beyond each edge of the viewport", cfg.OverScanCount},
		{"max_nest_depth", "Deepest nesting of inline formatting", cfg.MaxNestDepth},
		{"alignment_directives", "Enable ->centered<- and ->right-> paragraphs", cfg.Alignment()},
		{"detect_language", "Detect the language of code fences without an info string", cfg.Detection()},
		{"resource_root", "Directory or URL used to resolve relative images", cfg.ResourceRoot},
		{"log_level", "Log level: debug, info, warn or error", cfg.LogLevel},
	}
}

// GenerateTemplate creates a configuration file listing every option with
// its default value.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	entries := templateEntries(NewConfig())

	if opts.Format == "json" {
		values := make(map[string]any, len(entries))
		for _, entry := range entries {
			values[entry.key] = entry.value
		}
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(out, '\n'), nil
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString("\n")
	for _, entry := range entries {
		fmt.Fprintf(&buf, "\n# %s\n", entry.comment)
		if s, ok := entry.value.(string); ok && s == "" {
			fmt.Fprintf(&buf, "# %s: \"\"\n", entry.key)
			continue
		}
		fmt.Fprintf(&buf, "%s: %v\n", entry.key, entry.value)
	}
	return buf.Bytes(), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# mdview configuration
# See: https://github.com/yaklabco/mdview`
}
