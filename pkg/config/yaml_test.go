package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/pkg/config"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()

	assert.Equal(t, 50, cfg.MaxCacheEntries)
	assert.Equal(t, int64(100<<20), cfg.MaxCacheMemoryBytes)
	assert.Equal(t, 30*time.Minute, cfg.CacheEntryTTL)
	assert.True(t, cfg.Progressive())
	assert.Equal(t, 300, cfg.InitialRenderLines)
	assert.Equal(t, 200, cfg.ProgressiveBatchLines)
	assert.Equal(t, 10*time.Millisecond, cfg.ProgressiveBatchDelay)
	assert.Equal(t, 200, cfg.LargeDocumentThresholdLines)
	assert.Equal(t, 5, cfg.OverScanCount)
	assert.Equal(t, 20, cfg.MaxNestDepth)
	assert.False(t, cfg.Alignment())
	assert.True(t, cfg.Detection())
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()

		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies pointers and slices", func(t *testing.T) {
		t.Parallel()

		original := config.NewConfig()
		original.Ignore = []string{"vendor/**"}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, original, clone)
		assert.Equal(t, original, clone)

		*clone.EnableProgressiveRendering = false
		clone.Ignore[0] = "changed"

		assert.True(t, original.Progressive())
		assert.Equal(t, "vendor/**", original.Ignore[0])
	})
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	original := config.NewConfig()
	original.ResourceRoot = "/docs"
	original.AlignmentDirectives = config.Bool(true)

	data, err := original.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "cache_entry_ttl: 30m0s")
	assert.NotContains(t, string(data), "format")

	parsed, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, original.CacheEntryTTL, parsed.CacheEntryTTL)
	assert.Equal(t, original.ProgressiveBatchDelay, parsed.ProgressiveBatchDelay)
	assert.Equal(t, "/docs", parsed.ResourceRoot)
	assert.True(t, parsed.Alignment())
}

func TestFromYAML(t *testing.T) {
	t.Parallel()

	t.Run("partial document", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.FromYAML([]byte("max_cache_entries: 10\nenable_progressive_rendering: false\n"))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.MaxCacheEntries)
		assert.False(t, cfg.Progressive())
		assert.Zero(t, cfg.OverScanCount)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.FromYAML(nil)
		require.NoError(t, err)
		assert.NotNil(t, cfg)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()

		_, err := config.FromYAML([]byte("flavor: gfm\n"))
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Parallel()

		_, err := config.FromYAML([]byte("cache_entry_ttl: soon\n"))
		assert.Error(t, err)
	})
}

func TestToYAMLWithHeader(t *testing.T) {
	t.Parallel()

	data, err := config.NewConfig().ToYAMLWithHeader("# header")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# header\n\nmax_cache_entries: 50")
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	yamlOut, err := config.GenerateTemplate(config.TemplateOptions{})
	require.NoError(t, err)

	parsed, err := config.FromYAML(yamlOut)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxCacheEntries, parsed.MaxCacheEntries)
	assert.Equal(t, config.DefaultCacheEntryTTL, parsed.CacheEntryTTL)
	assert.True(t, parsed.Progressive())

	jsonOut, err := config.GenerateTemplate(config.TemplateOptions{Format: "json"})
	require.NoError(t, err)
	assert.Contains(t, string(jsonOut), `"over_scan_count": 5`)
}
