package configloader

import "github.com/yaklabco/mdview/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Optional booleans: override overwrites base if override is non-nil
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.MaxCacheEntries != 0 {
		result.MaxCacheEntries = override.MaxCacheEntries
	}
	if override.MaxCacheMemoryBytes != 0 {
		result.MaxCacheMemoryBytes = override.MaxCacheMemoryBytes
	}
	if override.CacheMemoryCeilingBytes != 0 {
		result.CacheMemoryCeilingBytes = override.CacheMemoryCeilingBytes
	}
	if override.CacheEntryTTL != 0 {
		result.CacheEntryTTL = override.CacheEntryTTL
	}
	if override.CacheSweepInterval != 0 {
		result.CacheSweepInterval = override.CacheSweepInterval
	}
	if override.InitialRenderLines != 0 {
		result.InitialRenderLines = override.InitialRenderLines
	}
	if override.ProgressiveBatchLines != 0 {
		result.ProgressiveBatchLines = override.ProgressiveBatchLines
	}
	if override.ProgressiveBatchDelay != 0 {
		result.ProgressiveBatchDelay = override.ProgressiveBatchDelay
	}
	if override.LargeDocumentThresholdLines != 0 {
		result.LargeDocumentThresholdLines = override.LargeDocumentThresholdLines
	}
	if override.OverScanCount != 0 {
		result.OverScanCount = override.OverScanCount
	}
	if override.MaxNestDepth != 0 {
		result.MaxNestDepth = override.MaxNestDepth
	}
	if override.ResourceRoot != "" {
		result.ResourceRoot = override.ResourceRoot
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}

	// Pointer booleans distinguish "false" from "unset".
	if override.EnableProgressiveRendering != nil {
		result.EnableProgressiveRendering = config.Bool(*override.EnableProgressiveRendering)
	}
	if override.AlignmentDirectives != nil {
		result.AlignmentDirectives = config.Bool(*override.AlignmentDirectives)
	}
	if override.DetectLanguage != nil {
		result.DetectLanguage = config.Bool(*override.DetectLanguage)
	}

	if override.Ignore != nil {
		result.Ignore = append([]string(nil), override.Ignore...)
	}

	return &result
}
