package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/yaklabco/pysqlfmt/internal/ui/pretty"
	"github.com/yaklabco/pysqlfmt/pkg/runner"
)

// TextReporter writes one status line per file and a summary. In print
// mode it writes the formatted sources to Writer and the status lines to
// ErrorWriter.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	if opts.ErrorWriter == nil {
		opts.ErrorWriter = opts.Writer
	}
	status := opts.Writer
	if opts.Mode == runner.ModePrint {
		status = opts.ErrorWriter
	}
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, status)),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	out := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	status := out
	if r.opts.Mode == runner.ModePrint && r.opts.ErrorWriter != r.opts.Writer {
		status = bufio.NewWriterSize(r.opts.ErrorWriter, bufWriterSize)
	}
	defer func() {
		if flushErr := out.Flush(); err == nil {
			err = flushErr
		}
		if status != out {
			if flushErr := status.Flush(); err == nil {
				err = flushErr
			}
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprint(status, r.styles.FormatSummaryOneLine(runner.Stats{}, r.opts.Mode))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		path := displayPath(r.opts.WorkingDir, file.Path)
		if file.Error != nil {
			fmt.Fprint(status, r.styles.FormatFileError(path, file.Error))
			continue
		}
		if file.Result == nil {
			continue
		}
		if r.opts.Mode == runner.ModePrint {
			if _, err := out.Write(file.Result.Formatted); err != nil {
				return 0, fmt.Errorf("write %s: %w", path, err)
			}
			continue
		}
		fmt.Fprint(status, r.styles.FormatFileStatus(path, file.Result, r.opts.Verbose))
	}

	if r.opts.ShowSummary {
		writeSummary(status, r.styles, result, r.opts.Mode)
	}

	return result.Stats.FilesChanged, nil
}

func writeSummary(w io.Writer, styles *pretty.Styles, result *runner.Result, mode runner.Mode) {
	for _, err := range result.Errors {
		fmt.Fprintln(w, styles.Error.Render(fmt.Sprintf("error: %v", err)))
	}
	fmt.Fprint(w, styles.FormatSummaryOneLine(result.Stats, mode))
}
