package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pysqlfmt/pkg/reporter"
	"github.com/yaklabco/pysqlfmt/pkg/runner"
	"github.com/yaklabco/pysqlfmt/pkg/udiff"
)

const (
	rawJob       = "query = 'select 1'\n"
	formattedJob = "query = '''\nSELECT\n    1\n'''\n"
)

var workDir = filepath.FromSlash("/work")

func abs(rel string) string {
	return filepath.Join(workDir, filepath.FromSlash(rel))
}

// sampleResult has one changed file, one clean file and one failure.
func sampleResult(mode runner.Mode) *runner.Result {
	changed := &runner.FileResult{
		Path:      abs("jobs/a.py"),
		Kind:      runner.KindPython,
		Changed:   true,
		Formatted: []byte(formattedJob),
	}
	switch mode {
	case runner.ModeWrite:
		changed.Written = true
		changed.BackupCreated = true
	case runner.ModeCheck, runner.ModeDiff:
		changed.Diff = udiff.Compute(changed.Path, rawJob, formattedJob)
	}

	result := &runner.Result{
		Files: []runner.FileOutcome{
			{Path: abs("jobs/a.py"), Result: changed},
			{Path: abs("jobs/b.py"), Result: &runner.FileResult{
				Path:      abs("jobs/b.py"),
				Kind:      runner.KindPython,
				Formatted: []byte(formattedJob),
			}},
			{Path: abs("jobs/c.py"), Error: errors.New("format failure: no match found for stmt")},
		},
		Stats: runner.Stats{
			FilesDiscovered: 3,
			FilesProcessed:  2,
			FilesChanged:    1,
			FilesErrored:    1,
		},
	}
	if changed.Written {
		result.Stats.FilesWritten = 1
	}
	return result
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{input: "", want: reporter.FormatText},
		{input: "text", want: reporter.FormatText},
		{input: "json", want: reporter.FormatJSON},
		{input: "diff", want: reporter.FormatDiff},
		{input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []reporter.Format{"", reporter.FormatText, reporter.FormatJSON, reporter.FormatDiff} {
		rep, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: format, Color: "never"})
		require.NoError(t, err)
		assert.NotNil(t, rep)
	}

	rep, err := reporter.New(reporter.Options{Format: "xml"})
	require.Error(t, err)
	assert.Nil(t, rep)
}

func TestTextReporter(t *testing.T) {
	t.Parallel()

	t.Run("write mode", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTextReporter(reporter.Options{
			Writer:      &buf,
			Mode:        runner.ModeWrite,
			Color:       "never",
			ShowSummary: true,
			WorkingDir:  workDir,
		})

		count, err := rep.Report(context.Background(), sampleResult(runner.ModeWrite))
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t,
			"reformatted jobs/a.py (backup created)\n"+
				"jobs/c.py: error: format failure: no match found for stmt\n"+
				"1 file reformatted, 1 file left unchanged, 1 file failed\n",
			buf.String())
	})

	t.Run("check mode verbose", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTextReporter(reporter.Options{
			Writer:     &buf,
			Mode:       runner.ModeCheck,
			Color:      "never",
			Verbose:    true,
			WorkingDir: workDir,
		})

		_, err := rep.Report(context.Background(), sampleResult(runner.ModeCheck))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "would reformat jobs/a.py\n")
		assert.Contains(t, buf.String(), "unchanged jobs/b.py\n")
		assert.NotContains(t, buf.String(), "would be left unchanged", "summary is off")
	})

	t.Run("print mode splits streams", func(t *testing.T) {
		t.Parallel()

		var out, status bytes.Buffer
		rep := reporter.NewTextReporter(reporter.Options{
			Writer:      &out,
			ErrorWriter: &status,
			Mode:        runner.ModePrint,
			Color:       "never",
			ShowSummary: true,
			WorkingDir:  workDir,
		})

		_, err := rep.Report(context.Background(), sampleResult(runner.ModePrint))
		require.NoError(t, err)
		assert.Equal(t, formattedJob+formattedJob, out.String())
		assert.Contains(t, status.String(), "jobs/c.py: error:")
		assert.Contains(t, status.String(), "1 file would be reformatted")
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true})

		count, err := rep.Report(context.Background(), nil)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Equal(t, "No files to format.\n", buf.String())
	})
}

func TestJSONReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{
		Writer:     &buf,
		Mode:       runner.ModeCheck,
		WorkingDir: workDir,
	})

	count, err := rep.Report(context.Background(), sampleResult(runner.ModeCheck))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, "check", output.Mode)
	require.Len(t, output.Files, 3)

	assert.Equal(t, "jobs/a.py", output.Files[0].Path)
	assert.Equal(t, "would reformat", output.Files[0].Status)
	assert.True(t, output.Files[0].Changed)
	assert.Contains(t, output.Files[0].Diff, "+SELECT\n")
	assert.Nil(t, output.Files[0].Formatted)

	assert.Equal(t, "unchanged", output.Files[1].Status)
	assert.Empty(t, output.Files[1].Diff)

	assert.Equal(t, "error", output.Files[2].Status)
	assert.Contains(t, output.Files[2].Error, "no match found")

	assert.Equal(t, reporter.JSONSummary{
		FilesChecked:   2,
		FilesChanged:   1,
		FilesUnchanged: 1,
		FilesErrored:   1,
	}, output.Summary)
}

func TestJSONReporter_PrintModeIncludesSource(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})

	_, err := rep.Report(context.Background(), sampleResult(runner.ModePrint))
	require.NoError(t, err)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.NotNil(t, output.Files[0].Formatted)
	assert.Equal(t, formattedJob, *output.Files[0].Formatted)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")), "compact output is one line")
}

func TestJSONReporter_NilResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := reporter.NewJSONReporter(reporter.Options{Writer: &buf}).Report(context.Background(), nil)
	require.NoError(t, err)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "1.0.0", output.Version)
	assert.Empty(t, output.Files)
}

func TestDiffReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
		WorkingDir:  workDir,
	})

	count, err := rep.Report(context.Background(), sampleResult(runner.ModeDiff))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	want := "diff --git a/jobs/a.py b/jobs/a.py\n" +
		"--- a/jobs/a.py\n" +
		"+++ b/jobs/a.py\n" +
		"@@ -1,1 +1,4 @@\n" +
		"-query = 'select 1'\n" +
		"+query = '''\n" +
		"+SELECT\n" +
		"+    1\n" +
		"+'''\n" +
		"\n" +
		"jobs/c.py: error: format failure: no match found for stmt\n" +
		"1 file changed, 4 insertions(+), 1 deletion(-)\n"
	assert.Equal(t, want, buf.String())
}
