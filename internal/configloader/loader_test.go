package configloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yaklabco/mdview/pkg/config"
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}

	if result.Config.MaxCacheEntries != config.DefaultMaxCacheEntries {
		t.Errorf("expected max_cache_entries %d, got %d", config.DefaultMaxCacheEntries, result.Config.MaxCacheEntries)
	}
	if !result.Config.Progressive() {
		t.Error("expected progressive rendering enabled by default")
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	// jobs is a CLI-only option (yaml:"-"), so it is not part of this file.
	writeFile(t, filepath.Join(tmpDir, ".mdview.yml"), `
max_cache_entries: 7
cache_entry_ttl: 5m
alignment_directives: true
detect_language: false
ignore:
  - "vendor/**"
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.MaxCacheEntries != 7 {
		t.Errorf("expected max_cache_entries 7, got %d", cfg.MaxCacheEntries)
	}
	if cfg.CacheEntryTTL != 5*time.Minute {
		t.Errorf("expected cache_entry_ttl 5m, got %v", cfg.CacheEntryTTL)
	}
	if !cfg.Alignment() {
		t.Error("expected alignment directives enabled")
	}
	if cfg.Detection() {
		t.Error("expected language detection disabled")
	}
	if cfg.MaxCacheMemoryBytes != config.DefaultMaxCacheMemoryBytes {
		t.Errorf("unset key should keep its default, got %d", cfg.MaxCacheMemoryBytes)
	}
	if len(cfg.Ignore) != 1 || cfg.Ignore[0] != "vendor/**" {
		t.Errorf("unexpected ignore list %v", cfg.Ignore)
	}
	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected one loaded file, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfigFromParent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "docs", "guide")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "mdview.yaml"), "over_scan_count: 9\n")

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.OverScanCount != 9 {
		t.Errorf("expected over_scan_count 9, got %d", result.Config.OverScanCount)
	}
}

func TestLoad_ExplicitConfigOverridesProject(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdview.yml"), "max_nest_depth: 10\nover_scan_count: 2\n")

	explicit := filepath.Join(tmpDir, "custom.yml")
	writeFile(t, explicit, "max_nest_depth: 12\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.MaxNestDepth != 12 {
		t.Errorf("expected explicit max_nest_depth 12, got %d", result.Config.MaxNestDepth)
	}
	if result.Config.OverScanCount != 2 {
		t.Errorf("expected project over_scan_count 2, got %d", result.Config.OverScanCount)
	}
	if got := result.LoadedFrom[len(result.LoadedFrom)-1]; got != explicit {
		t.Errorf("expected explicit config loaded last, got %s", got)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdview.yml"), "enable_progressive_rendering: true\nlog_level: warn\n")

	opts := isolated(tmpDir)
	opts.CLIConfig = &config.Config{
		EnableProgressiveRendering: config.Bool(false),
		LogLevel:                   "debug",
		Format:                     config.FormatJSON,
		Jobs:                       3,
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Progressive() {
		t.Error("CLI false should override file true")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level debug, got %q", cfg.LogLevel)
	}
	if cfg.Format != config.FormatJSON || cfg.Jobs != 3 {
		t.Errorf("CLI-only options not applied: format=%q jobs=%d", cfg.Format, cfg.Jobs)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "max_cache_entries: [", "parse"},
		{"unknown key", "flavor: gfm\n", "flavor"},
		{"negative count", "max_cache_entries: -1\n", "max_cache_entries"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"bad glob", "ignore: ['[']\n", "ignore[0]"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, ".mdview.yml"), testCase.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			if err == nil {
				t.Fatal("expected error for invalid config")
			}
			if !strings.Contains(err.Error(), testCase.wantErr) {
				t.Errorf("error %q does not mention %q", err, testCase.wantErr)
			}
		})
	}
}

func TestLoad_Warnings(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdview.yml"), "max_cache_memory_bytes: 4096\ncache_memory_ceiling_bytes: 1024\n")

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "cache_memory_ceiling_bytes") {
		t.Errorf("unexpected warning %q", result.Warnings[0])
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolated(t.TempDir()))
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLoad_Env(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdview.yml"), "max_cache_entries: 5\n")

	t.Setenv("MDVIEW_MAX_CACHE_ENTRIES", "11")
	t.Setenv("MDVIEW_PROGRESSIVE_BATCH_DELAY", "25ms")
	t.Setenv("MDVIEW_DETECT_LANGUAGE", "0")
	t.Setenv("MDVIEW_IGNORE", " a/** , ,b.md ")

	opts := isolated(tmpDir)
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.MaxCacheEntries != 11 {
		t.Errorf("env should override file, got %d", cfg.MaxCacheEntries)
	}
	if cfg.ProgressiveBatchDelay != 25*time.Millisecond {
		t.Errorf("expected 25ms delay, got %v", cfg.ProgressiveBatchDelay)
	}
	if cfg.Detection() {
		t.Error("expected language detection disabled from env")
	}
	if strings.Join(cfg.Ignore, "|") != "a/**|b.md" {
		t.Errorf("unexpected ignore list %q", cfg.Ignore)
	}
}

func TestLoadFromEnv_InvalidValue(t *testing.T) {
	t.Setenv("MDVIEW_CACHE_ENTRY_TTL", "soon")

	err := LoadFromEnv(config.NewConfig())
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "MDVIEW_CACHE_ENTRY_TTL") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	if len(vars) != len(envMappings()) {
		t.Fatalf("expected %d vars, got %d", len(envMappings()), len(vars))
	}
	for i, v := range vars {
		if !strings.HasPrefix(v[0], envVarPrefix) {
			t.Errorf("%s lacks prefix", v[0])
		}
		if v[1] == "" {
			t.Errorf("%s has no description", v[0])
		}
		if i > 0 && vars[i-1][0] >= v[0] {
			t.Errorf("vars not sorted at %s", v[0])
		}
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	base.Ignore = []string{"a"}

	override := &config.Config{
		OverScanCount:  1,
		DetectLanguage: config.Bool(false),
		Ignore:         []string{},
	}

	got := merge(base, override)

	if got.OverScanCount != 1 {
		t.Errorf("expected override scalar, got %d", got.OverScanCount)
	}
	if got.MaxNestDepth != config.DefaultMaxNestDepth {
		t.Errorf("zero override should keep base, got %d", got.MaxNestDepth)
	}
	if got.Detection() {
		t.Error("explicit false should override")
	}
	if got.Ignore == nil || len(got.Ignore) != 0 {
		t.Errorf("non-nil empty slice should replace base, got %v", got.Ignore)
	}
	if len(base.Ignore) != 1 || !base.Detection() {
		t.Error("merge must not mutate base")
	}

	if merge(nil, override) != override || merge(base, nil) != base {
		t.Error("nil side should return the other config")
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".mdview.yml")

	if err := WriteConfig(ctx, path, config.TemplateOptions{}, false); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("generated template does not load: %v", err)
	}
	if cfg.MaxCacheEntries != config.DefaultMaxCacheEntries {
		t.Errorf("template max_cache_entries = %d", cfg.MaxCacheEntries)
	}

	if err := WriteConfig(ctx, path, config.TemplateOptions{}, false); err == nil {
		t.Error("expected error when file exists without force")
	}
	if err := WriteConfig(ctx, path, config.TemplateOptions{}, true); err != nil {
		t.Errorf("force overwrite failed: %v", err)
	}
}
