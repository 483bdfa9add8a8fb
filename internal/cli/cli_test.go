package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdview/internal/cli"
	"github.com/yaklabco/mdview/pkg/runner"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test-version",
		Commit:  "test-commit",
		Date:    "test-date",
	}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	if cmd == nil {
		t.Fatal("NewRootCommand returned nil")
	}

	if cmd.Use != "mdview" {
		t.Errorf("expected Use to be 'mdview', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	expectedSubcommands := []string{"parse", "view", "split", "stats", "init", "version"}

	for _, name := range expectedSubcommands {
		subCmd, _, err := cmd.Find([]string{name})
		if err != nil {
			t.Errorf("expected subcommand %q to exist, got error: %v", name, err)
			continue
		}

		if subCmd.Name() != name {
			t.Errorf("expected subcommand name %q, got %q", name, subCmd.Name())
		}
	}
}

func TestCommandFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		flags   []string
	}{
		{"parse", []string{"format", "output", "alignment", "no-detect", "max-depth", "resource-root", "positions", "assets"}},
		{"view", []string{"width", "height", "top", "select", "interactive", "style", "over-scan"}},
		{"split", []string{"lines", "batch", "batches", "format"}},
		{"stats", []string{"format", "jobs", "passes", "ignore", "include", "per-file", "follow-symlinks"}},
		{"init", []string{"force", "format", "output"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.command, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(testInfo())
			sub, _, err := cmd.Find([]string{testCase.command})
			require.NoError(t, err)

			for _, flag := range testCase.flags {
				assert.NotNil(t, sub.Flags().Lookup(flag), "flag --%s", flag)
			}
		})
	}
}

func TestRootCommandHelpListsEnvironment(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	help := stdout.String()
	assert.Contains(t, help, "Available Commands:")
	assert.Contains(t, help, "Environment:")
	assert.Contains(t, help, "MDVIEW_MAX_CACHE_ENTRIES")
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "test-version")
	assert.Contains(t, stdout.String(), "test-commit")
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(nil))
	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(&runner.Result{}))
	assert.Equal(t, cli.ExitParseFailures, cli.ExitCodeFromResult(&runner.Result{
		Stats: runner.Stats{FilesErrored: 1},
	}))
}

func TestExitCodeFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"parse failures", cli.ErrParseFailures, cli.ExitParseFailures},
		{"usage", fmt.Errorf("%w: bad flag", cli.ErrUsage), cli.ExitInvalidUsage},
		{"config", errors.Join(cli.ErrConfig, errors.New("bad yaml")), cli.ExitConfigError},
		{"io", errors.Join(cli.ErrIO, errors.New("disk")), cli.ExitIOError},
		{"other", errors.New("boom"), cli.ExitInternalError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, cli.ExitCodeFromError(testCase.err))
		})
	}
}
