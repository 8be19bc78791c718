package querylit

import "strings"

// ResolveIndent returns the indentation a reformatted query starting at pos
// is anchored to.
//
// The query proper starts after any newlines directly following pos. An
// argument literal whose query starts right at pos takes the indentation of
// its own line; otherwise it takes the indentation of the nearest non-blank
// line above the query. A variable literal is always anchored to the line of
// its assignment, which holds the opening quote, so the query body's own
// indentation never leaks into the result.
func ResolveIndent(pos int, text string, kind Kind) string {
	pos = min(max(pos, 0), len(text))

	queryStart := pos
	for queryStart < len(text) && text[queryStart] == '\n' {
		queryStart++
	}

	switch {
	case kind == VariableLiteral:
		return lineIndent(text, pos)
	case queryStart == pos:
		return lineIndent(text, queryStart)
	default:
		return prevLineIndent(text, queryStart)
	}
}

// lineStart returns the offset of the first byte of the line holding pos.
func lineStart(text string, pos int) int {
	return strings.LastIndexByte(text[:pos], '\n') + 1
}

// lineIndent returns the leading whitespace of the line holding pos.
func lineIndent(text string, pos int) string {
	start := lineStart(text, pos)
	end := start
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[start:end]
}

// prevLineIndent returns the leading whitespace of the nearest non-blank line
// before the line holding pos, or "" when there is none.
func prevLineIndent(text string, pos int) string {
	start := lineStart(text, pos)
	for start > 0 {
		prevStart := lineStart(text, start-1)
		if strings.TrimSpace(text[prevStart:start-1]) != "" {
			return lineIndent(text, prevStart)
		}
		start = prevStart
	}
	return ""
}

// IndentQuery prefixes every non-empty line of query with indent. Empty
// lines stay empty so a re-emitted block has no trailing whitespace.
func IndentQuery(query, indent string) string {
	if indent == "" {
		return query
	}
	lines := strings.Split(query, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}
