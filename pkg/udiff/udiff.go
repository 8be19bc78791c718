// Package udiff computes line-based unified diffs between two texts.
package udiff

import (
	"fmt"
	"io"
	"strings"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

// maxTable bounds the LCS table; larger changed regions are reported as a
// single replacement.
const maxTable = 4 << 20

// Op is the kind of a diff line.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

// Line is one line of an edit script. Text keeps its trailing newline, if
// any.
type Line struct {
	Op   Op
	Text string
}

// Hunk is a run of changes with surrounding context. Start lines are
// 1-based; a zero count puts Start on the line before the change.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int
	Lines              []Line
}

// Diff is the unified diff of one file.
type Diff struct {
	Path    string
	Hunks   []Hunk
	Added   int
	Removed int
}

// Compute diffs before against after with DefaultContext lines of context.
// It returns nil when the texts are equal.
func Compute(path, before, after string) *Diff {
	return ComputeContext(path, before, after, DefaultContext)
}

// ComputeContext is Compute with an explicit context size.
func ComputeContext(path, before, after string, context int) *Diff {
	if before == after {
		return nil
	}
	if context < 0 {
		context = 0
	}

	script := editScript(splitLines(before), splitLines(after))
	d := &Diff{Path: path, Hunks: group(script, context)}
	for _, l := range script {
		switch l.Op {
		case Insert:
			d.Added++
		case Delete:
			d.Removed++
		}
	}
	return d
}

// Empty reports whether d holds no changes.
func (d *Diff) Empty() bool {
	return d == nil || len(d.Hunks) == 0
}

// String renders d in unified format with a/ and b/ path prefixes.
func (d *Diff) String() string {
	var b strings.Builder
	_, _ = d.WriteTo(&b)
	return b.String()
}

// WriteTo writes d in unified format.
func (d *Diff) WriteTo(w io.Writer) (int64, error) {
	if d.Empty() {
		return 0, nil
	}

	cw := &countingWriter{w: w}
	path := strings.TrimPrefix(d.Path, "/")
	fmt.Fprintf(cw, "--- a/%s\n+++ b/%s\n", path, path)
	for _, h := range d.Hunks {
		fmt.Fprintf(cw, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
		for _, l := range h.Lines {
			writeLine(cw, l)
		}
	}
	return cw.n, cw.err
}

func writeLine(w io.Writer, l Line) {
	prefix := " "
	switch l.Op {
	case Insert:
		prefix = "+"
	case Delete:
		prefix = "-"
	}
	if strings.HasSuffix(l.Text, "\n") {
		fmt.Fprint(w, prefix, l.Text)
		return
	}
	fmt.Fprint(w, prefix, l.Text, "\n\\ No newline at end of file\n")
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

// splitLines splits s after each newline. A final line without a newline
// is kept as is so that "x" and "x\n" differ.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// editScript trims the common prefix and suffix and runs an LCS over the
// remaining middle.
func editScript(a, b []string) []Line {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	script := make([]Line, 0, len(a)+len(b)-prefix-suffix)
	for _, s := range a[:prefix] {
		script = append(script, Line{Equal, s})
	}
	script = append(script, middle(a[prefix:len(a)-suffix], b[prefix:len(b)-suffix])...)
	for _, s := range a[len(a)-suffix:] {
		script = append(script, Line{Equal, s})
	}
	return script
}

func middle(a, b []string) []Line {
	n, m := len(a), len(b)
	var out []Line

	if n == 0 || m == 0 || (n+1)*(m+1) > maxTable {
		for _, s := range a {
			out = append(out, Line{Delete, s})
		}
		for _, s := range b {
			out = append(out, Line{Insert, s})
		}
		return out
	}

	// lcs[i*(m+1)+j] is the LCS length of a[i:] and b[j:].
	width := m + 1
	lcs := make([]int32, (n+1)*width)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i*width+j] = lcs[(i+1)*width+j+1] + 1
			} else {
				lcs[i*width+j] = max(lcs[(i+1)*width+j], lcs[i*width+j+1])
			}
		}
	}

	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, Line{Equal, a[i]})
			i++
			j++
		case lcs[(i+1)*width+j] >= lcs[i*width+j+1]:
			out = append(out, Line{Delete, a[i]})
			i++
		default:
			out = append(out, Line{Insert, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		out = append(out, Line{Delete, a[i]})
	}
	for ; j < m; j++ {
		out = append(out, Line{Insert, b[j]})
	}
	return out
}

// group splits script into hunks. Changes separated by at most 2*context
// equal lines share a hunk.
func group(script []Line, context int) []Hunk {
	n := len(script)
	oldAt := make([]int, n+1)
	newAt := make([]int, n+1)
	for i, l := range script {
		oldAt[i+1], newAt[i+1] = oldAt[i], newAt[i]
		if l.Op != Insert {
			oldAt[i+1]++
		}
		if l.Op != Delete {
			newAt[i+1]++
		}
	}

	var hunks []Hunk
	for i := 0; i < n; {
		if script[i].Op == Equal {
			i++
			continue
		}

		end := i + 1
		for j := end; j < n; j++ {
			if script[j].Op != Equal {
				end = j + 1
				continue
			}
			if j-end >= 2*context {
				break
			}
		}

		start := max(i-context, 0)
		stop := min(end+context, n)
		h := Hunk{
			OldStart: oldAt[start] + 1,
			OldLines: oldAt[stop] - oldAt[start],
			NewStart: newAt[start] + 1,
			NewLines: newAt[stop] - newAt[start],
			Lines:    script[start:stop],
		}
		if h.OldLines == 0 {
			h.OldStart--
		}
		if h.NewLines == 0 {
			h.NewStart--
		}
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}
