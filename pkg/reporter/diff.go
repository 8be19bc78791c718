package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/pysqlfmt/internal/ui/pretty"
	"github.com/yaklabco/pysqlfmt/pkg/runner"
	"github.com/yaklabco/pysqlfmt/pkg/udiff"
)

// DiffReporter formats results as unified diffs in git style.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
	}
}

// Report implements Reporter.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	if result == nil {
		return 0, nil
	}

	out := bufio.NewWriterSize(r.opts.Writer, bufWriterSize)
	defer func() {
		if flushErr := out.Flush(); err == nil {
			err = flushErr
		}
	}()

	var filesWithDiffs, additions, deletions int

	for _, file := range result.Files {
		path := displayPath(r.opts.WorkingDir, file.Path)
		if file.Error != nil {
			fmt.Fprint(out, r.styles.FormatFileError(path, file.Error))
			continue
		}
		if file.Result == nil || file.Result.Diff.Empty() {
			continue
		}

		diff := *file.Result.Diff
		diff.Path = path

		filesWithDiffs++
		additions += diff.Added
		deletions += diff.Removed
		r.writeDiff(out, &diff)
	}

	if filesWithDiffs > 0 && r.opts.ShowSummary {
		r.writeSummary(out, filesWithDiffs, additions, deletions)
	}

	return filesWithDiffs, nil
}

// writeDiff outputs a single file's diff with formatting.
func (r *DiffReporter) writeDiff(w io.Writer, diff *udiff.Diff) {
	header := fmt.Sprintf("diff --git a/%s b/%s", diff.Path, diff.Path)
	fmt.Fprintln(w, r.styles.DiffHeader.Render(header))

	body := strings.TrimSuffix(diff.String(), "\n")
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintln(w, r.styleLine(line))
	}

	fmt.Fprintln(w)
}

func (r *DiffReporter) styleLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return r.styles.DiffHeader.Render(line)
	case strings.HasPrefix(line, "@@"):
		return r.styles.DiffHunk.Render(line)
	case strings.HasPrefix(line, "+"):
		return r.styles.DiffAdd.Render(line)
	case strings.HasPrefix(line, "-"):
		return r.styles.DiffRemove.Render(line)
	default:
		return r.styles.DiffContext.Render(line)
	}
}

func (r *DiffReporter) writeSummary(w io.Writer, files, additions, deletions int) {
	parts := []string{pluralize(files, "file", "files") + " changed"}

	if additions > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(pluralize(additions, "insertion", "insertions")+"(+)"))
	}
	if deletions > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(pluralize(deletions, "deletion", "deletions")+"(-)"))
	}

	fmt.Fprintln(w, strings.Join(parts, ", "))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
