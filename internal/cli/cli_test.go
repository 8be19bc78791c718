package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pysqlfmt/internal/cli"
	"github.com/yaklabco/pysqlfmt/internal/configloader"
	"github.com/yaklabco/pysqlfmt/pkg/runner"
)

var testInfo = cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-10-01"}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo)
	require.NotNil(t, cmd)

	assert.Equal(t, "pysqlfmt", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.Contains(t, cmd.Long, "PYSQLFMT_SQL_STYLE", "help lists environment variables")

	for _, name := range []string{"format", "init", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestFormatCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo)
	formatCmd, _, err := cmd.Find([]string{"format"})
	require.NoError(t, err)

	for _, name := range []string{
		"files", "in-place", "python-style", "python-engine", "sql-style",
		"query-names", "callees", "check", "diff", "output-format", "jobs",
		"ignore", "markdown", "no-backups", "watch",
	} {
		assert.NotNil(t, formatCmd.Flags().Lookup(name), "missing flag --%s", name)
	}

	assert.Equal(t, "f", formatCmd.Flags().Lookup("files").Shorthand)
	assert.Equal(t, "i", formatCmd.Flags().Lookup("in-place").Shorthand)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "1.2.3")
	assert.Contains(t, stdout.String(), "abc123")
}

func TestHelpOutput(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"format", "--help"})

	require.NoError(t, cmd.Execute())
	out := stdout.String()
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "-i, --in-place")
	assert.Contains(t, out, "--output-format string")
	assert.Contains(t, out, "Global Flags:")
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	changed := &runner.Result{Stats: runner.Stats{FilesProcessed: 1, FilesChanged: 1}}
	failed := &runner.Result{Stats: runner.Stats{FilesErrored: 1}}

	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(nil, true))
	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(changed, false))
	assert.Equal(t, cli.ExitUnformatted, cli.ExitCodeFromResult(changed, true))
	assert.Equal(t, cli.ExitUnformatted, cli.ExitCodeFromResult(failed, false))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{nil, cli.ExitSuccess},
		{cli.ErrUnformatted, cli.ExitUnformatted},
		{fmt.Errorf("run: %w", cli.ErrFormatFailed), cli.ExitUnformatted},
		{&configloader.ValidationError{Field: "jobs", Message: "must not be negative"}, cli.ExitConfigError},
		{fmt.Errorf("write: %w", runner.ErrWriteFailure), cli.ExitIOError},
		{errors.New("boom"), cli.ExitInternalError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cli.ExitCode(tt.err), "%v", tt.err)
	}

	assert.True(t, cli.Reported(cli.ErrUnformatted))
	assert.False(t, cli.Reported(errors.New("boom")))
}
