package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/pysqlfmt/pkg/runner"
)

const summaryDividerWidth = 40

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// FormatFileStatus formats one line describing what happened to a file.
// Unchanged files yield an empty string unless verbose is set.
func (s *Styles) FormatFileStatus(path string, result *runner.FileResult, verbose bool) string {
	switch {
	case result.Skipped:
		return s.Skipped.Render("skipped") + " " + s.FilePath.Render(path) +
			s.Dim.Render(" ("+result.SkipReason+")") + "\n"
	case result.Written:
		line := s.Reformatted.Render("reformatted") + " " + s.FilePath.Render(path)
		if result.BackupCreated {
			line += s.Dim.Render(" (backup created)")
		}
		return line + "\n"
	case result.Changed:
		return s.WouldChange.Render("would reformat") + " " + s.FilePath.Render(path) + "\n"
	case verbose:
		return s.Dim.Render("unchanged "+path) + "\n"
	default:
		return ""
	}
}

// FormatFileError formats a per-file failure.
func (s *Styles) FormatFileError(path string, err error) string {
	return fmt.Sprintf("%s: %s\n", s.FilePath.Render(path), s.Error.Render(fmt.Sprintf("error: %v", err)))
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "2 files reformatted, 5 files left unchanged, 1 file failed".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, mode runner.Mode) string {
	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No files to format.") + "\n"
	}

	var parts []string

	switch mode {
	case runner.ModeWrite:
		if stats.FilesWritten > 0 {
			parts = append(parts, s.Reformatted.Render(plural(stats.FilesWritten, "file")+" reformatted"))
		}
		if unchanged := stats.FilesUnchanged(); unchanged > 0 {
			parts = append(parts, plural(unchanged, "file")+" left unchanged")
		}
	default:
		if stats.FilesChanged > 0 {
			parts = append(parts, s.WouldChange.Render(plural(stats.FilesChanged, "file")+" would be reformatted"))
		}
		if unchanged := stats.FilesUnchanged(); unchanged > 0 {
			parts = append(parts, plural(unchanged, "file")+" would be left unchanged")
		}
	}

	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Skipped.Render(plural(stats.FilesSkipped, "file")+" skipped"))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Failure.Render(plural(stats.FilesErrored, "file")+" failed"))
	}
	if stats.Blocks > 0 {
		parts = append(parts, s.Dim.Render(plural(stats.Blocks, "code block")+" formatted"))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats, mode runner.Mode) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files checked:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesProcessed)) + "\n")

	if stats.FilesChanged > 0 {
		builder.WriteString("  Files changed:     " +
			s.WouldChange.Render(strconv.Itoa(stats.FilesChanged)) + "\n")
	}
	if stats.FilesWritten > 0 {
		builder.WriteString("  Files written:     " +
			s.Success.Render(strconv.Itoa(stats.FilesWritten)) + "\n")
	}
	if stats.FilesSkipped > 0 {
		builder.WriteString("  Files skipped:     " +
			s.Skipped.Render(strconv.Itoa(stats.FilesSkipped)) + "\n")
	}
	if stats.FilesErrored > 0 {
		builder.WriteString("  Files failed:      " +
			s.Failure.Render(strconv.Itoa(stats.FilesErrored)) + "\n")
	}
	if stats.Blocks > 0 {
		builder.WriteString("  Code blocks:       " +
			s.SummaryValue.Render(strconv.Itoa(stats.Blocks)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Formatting failed for some files"))
	case mode == runner.ModeCheck && stats.FilesChanged > 0:
		builder.WriteString(s.Failure.Render("Some files would be reformatted"))
	case mode == runner.ModeWrite || stats.FilesChanged == 0:
		builder.WriteString(s.Success.Render("All done"))
	default:
		builder.WriteString(s.Warning.Render("Some files would be reformatted"))
	}
	builder.WriteString("\n")

	return builder.String()
}
