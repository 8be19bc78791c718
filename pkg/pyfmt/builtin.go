package pyfmt

import (
	"context"
	"strings"

	"github.com/yaklabco/pysqlfmt/pkg/pysource"
)

const (
	maxBlankTopLevel = 2
	maxBlankNested   = 1
	blankAroundDefs  = 2
)

// lineInfo describes one physical source line.
type lineInfo struct {
	// opensInString is set when the line begins inside a multi-line string.
	opensInString bool

	// closesInString is set when the line break ending the line belongs to
	// a string literal.
	closesInString bool

	// statement is set when a logical line at bracket depth zero starts here.
	statement bool

	// comment is set when the line holds nothing but a comment.
	comment bool
}

func formatBuiltin(_ context.Context, src string) (string, error) {
	return normalize(src), nil
}

// normalize applies the builtin layout rules. It is idempotent.
func normalize(src string) string {
	src = toLF(src)
	if strings.TrimSpace(src) == "" {
		return ""
	}

	lines := strings.Split(src, "\n")
	info := classify(src, len(lines))
	attached := commentsAttachedToDefs(lines, info)

	var out strings.Builder
	out.Grow(len(src))

	var (
		emitted    bool
		pending    int
		prevText   string
		prevIndent int
		defOpen    bool
	)

	for i, line := range lines {
		li := info[i]
		if !li.closesInString {
			line = strings.TrimRight(line, " \t\f\v")
		}

		if line == "" && !li.opensInString {
			pending++
			continue
		}

		indent := indentWidth(line)
		topLevel := indent == 0 && (li.statement || li.comment)

		blanks := 0
		if emitted {
			limit := maxBlankTopLevel
			if indent > 0 {
				limit = maxBlankNested
			}
			blanks = min(pending, limit)

			if topLevel {
				trimmed := strings.TrimSpace(line)
				switch {
				case isDecorator(prevText):
					blanks = 0
				case (li.statement && isDefinition(trimmed)) || attached[i]:
					if !isCommentLine(prevText) || attached[i] {
						blanks = blankAroundDefs
					}
				case defOpen && prevIndent > 0:
					blanks = blankAroundDefs
				}
			}
		}

		for range blanks {
			out.WriteByte('\n')
		}
		out.WriteString(line)
		out.WriteByte('\n')

		if topLevel {
			trimmed := strings.TrimSpace(line)
			switch {
			case li.statement && isDefinition(trimmed):
				defOpen = true
			case li.statement:
				defOpen = false
			}
		}

		emitted = true
		pending = 0
		prevText = strings.TrimSpace(line)
		prevIndent = indent
		if li.opensInString {
			prevText = ""
		}
	}

	return out.String()
}

// classify tags every physical line using the lexer.
func classify(src string, count int) []lineInfo {
	info := make([]lineInfo, count)
	lineStart := lineStarts(src)

	atStatement := true
	for _, tok := range pysource.Tokenize(src) {
		switch tok.Kind {
		case pysource.KindEOF:
			return info
		case pysource.KindNewline:
			atStatement = true
			continue
		case pysource.KindComment:
			idx := tok.Line - 1
			if idx < count && tok.Depth == 0 && strings.TrimSpace(src[lineStart[idx]:tok.Start]) == "" {
				info[idx].comment = true
			}
			continue
		case pysource.KindString:
			last := tok.Line - 1 + strings.Count(tok.Text, "\n")
			for l := tok.Line - 1; l < last && l < count; l++ {
				info[l].closesInString = true
				info[l+1].opensInString = true
			}
		}

		if atStatement && tok.Depth == 0 && tok.Line-1 < count {
			info[tok.Line-1].statement = true
		}
		atStatement = false
	}
	return info
}

// commentsAttachedToDefs marks the first line of each top-level comment
// block that directly precedes a definition.
func commentsAttachedToDefs(lines []string, info []lineInfo) []bool {
	attached := make([]bool, len(lines))
	for i, line := range lines {
		if !info[i].statement || indentWidth(line) != 0 || !isDefinition(strings.TrimSpace(line)) {
			continue
		}
		first := -1
		for j := i - 1; j >= 0 && info[j].comment && indentWidth(lines[j]) == 0; j-- {
			first = j
		}
		if first >= 0 {
			attached[first] = true
		}
	}
	return attached
}

// toLF drops carriage returns that end a line, including repeated ones.
func toLF(src string) string {
	if !strings.Contains(src, "\r\n") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); i++ {
		if src[i] == '\r' {
			j := i
			for j < len(src) && src[j] == '\r' {
				j++
			}
			if j < len(src) && src[j] == '\n' {
				i = j - 1
				continue
			}
		}
		b.WriteByte(src[i])
	}
	return b.String()
}

func lineStarts(src string) []int {
	starts := []int{0}
	for i := range len(src) {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func isDefinition(trimmed string) bool {
	return isDecorator(trimmed) ||
		hasKeyword(trimmed, "def") ||
		hasKeyword(trimmed, "class") ||
		(strings.HasPrefix(trimmed, "async ") && hasKeyword(strings.TrimSpace(trimmed[len("async "):]), "def"))
}

func isDecorator(trimmed string) bool {
	return strings.HasPrefix(trimmed, "@")
}

func isCommentLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#")
}

func hasKeyword(trimmed, keyword string) bool {
	if !strings.HasPrefix(trimmed, keyword) || len(trimmed) == len(keyword) {
		return false
	}
	next := trimmed[len(keyword)]
	return next == ' ' || next == '\t' || next == '(' || next == ':'
}
