// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style

	// File status components
	FilePath    lipgloss.Style
	Reformatted lipgloss.Style
	WouldChange lipgloss.Style
	Skipped     lipgloss.Style

	// Diff styles
	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	// Summary styles
	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style
	Success      lipgloss.Style
	Failure      lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// Terminal palette (ANSI 256).
const (
	colorRed    = "9"
	colorGreen  = "10"
	colorYellow = "11"
	colorCyan   = "14"
	colorGray   = "8"
)

// NewStyles returns the output styles. Without color every style renders
// its input unchanged.
func NewStyles(colorEnabled bool) *Styles {
	style := func(color string, bold bool) lipgloss.Style {
		s := lipgloss.NewStyle()
		if !colorEnabled {
			return s
		}
		if color != "" {
			s = s.Foreground(lipgloss.Color(color))
		}
		return s.Bold(bold)
	}

	skipped := style(colorGray, false)
	if colorEnabled {
		skipped = skipped.Italic(true)
	}

	return &Styles{
		Error:   style(colorRed, true),
		Warning: style(colorYellow, true),

		FilePath:    style("", true),
		Reformatted: style(colorGreen, false),
		WouldChange: style(colorYellow, false),
		Skipped:     skipped,

		DiffHeader:  style("", true),
		DiffHunk:    style(colorCyan, false),
		DiffAdd:     style(colorGreen, false),
		DiffRemove:  style(colorRed, false),
		DiffContext: style(colorGray, false),

		SummaryTitle: style("", true),
		SummaryValue: style("", false),
		Success:      style(colorGreen, true),
		Failure:      style(colorRed, true),

		Dim:  style(colorGray, false),
		Bold: style("", true),
	}
}

// IsColorEnabled determines if color should be enabled based on mode and writer.
// Mode values: "auto" (default), "always", "never".
// In auto mode, color is enabled only if the writer is a TTY and NO_COLOR is not set.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		// https://no-color.org/
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
