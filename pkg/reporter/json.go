package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/pysqlfmt/pkg/runner"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Mode    string           `json:"mode"`
	Files   []JSONFileResult `json:"files"`
	Errors  []string         `json:"errors,omitempty"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's outcome.
type JSONFileResult struct {
	Path    string `json:"path"`
	Kind    string `json:"kind,omitempty"`
	Status  string `json:"status"`
	Changed bool   `json:"changed"`
	Written bool   `json:"written,omitempty"`
	Backup  bool   `json:"backup,omitempty"`
	Blocks  int    `json:"blocks,omitempty"`
	Error   string `json:"error,omitempty"`

	// Diff is the unified diff, set in check and diff modes.
	Diff string `json:"diff,omitempty"`

	// Formatted is the formatted source, set in print mode.
	Formatted *string `json:"formatted,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesChecked   int `json:"filesChecked"`
	FilesChanged   int `json:"filesChanged"`
	FilesUnchanged int `json:"filesUnchanged"`
	FilesWritten   int `json:"filesWritten"`
	FilesSkipped   int `json:"filesSkipped"`
	FilesErrored   int `json:"filesErrored"`
	Blocks         int `json:"blocks"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{opts: opts}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	bw := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.FilesChanged, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		Mode:    r.opts.Mode.String(),
		Files:   make([]JSONFileResult, 0),
	}
	if result == nil {
		return output
	}

	for _, file := range result.Files {
		entry := JSONFileResult{Path: displayPath(r.opts.WorkingDir, file.Path)}

		switch {
		case file.Error != nil:
			entry.Status = "error"
			entry.Error = file.Error.Error()
		case file.Result != nil:
			fr := file.Result
			entry.Kind = string(fr.Kind)
			entry.Status = fr.Summary()
			entry.Changed = fr.Changed
			entry.Written = fr.Written
			entry.Backup = fr.BackupCreated
			entry.Blocks = fr.Blocks
			if !fr.Diff.Empty() {
				entry.Diff = fr.Diff.String()
			}
			if r.opts.Mode == runner.ModePrint {
				formatted := string(fr.Formatted)
				entry.Formatted = &formatted
			}
		}

		output.Files = append(output.Files, entry)
	}

	for _, err := range result.Errors {
		output.Errors = append(output.Errors, err.Error())
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesChecked:   stats.FilesProcessed,
		FilesChanged:   stats.FilesChanged,
		FilesUnchanged: stats.FilesUnchanged(),
		FilesWritten:   stats.FilesWritten,
		FilesSkipped:   stats.FilesSkipped,
		FilesErrored:   stats.FilesErrored,
		Blocks:         stats.Blocks,
	}
	return output
}
