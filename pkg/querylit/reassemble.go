package querylit

import (
	"fmt"
	"strings"

	"github.com/yaklabco/pysqlfmt/pkg/splice"
)

// FormatFunc reformats one query.
type FormatFunc func(query string) (string, error)

// QuoteStyle is the delimiter style of a literal in the source.
type QuoteStyle uint8

const (
	SingleQuoted QuoteStyle = iota // ' or "
	TripleQuoted                   // ''' or """
)

// Shape describes the line structure of a formatted query.
type Shape uint8

const (
	SingleLine Shape = iota
	MultiLine
)

// Action is the rewrite applied to one literal.
type Action uint8

const (
	// ActionInline replaces the payload with the formatted query as is.
	ActionInline Action = iota

	// ActionBlock replaces the payload with the indented query on its own
	// lines, keeping the existing triple quotes.
	ActionBlock

	// ActionPromote replaces the payload and its single quotes with a
	// triple-quoted indented block.
	ActionPromote
)

// decisions maps (quote style, shape) to the rewrite action.
var decisions = [2][2]Action{
	TripleQuoted: {SingleLine: ActionBlock, MultiLine: ActionBlock},
	SingleQuoted: {SingleLine: ActionInline, MultiLine: ActionPromote},
}

// Decide returns the rewrite action for a literal.
func Decide(quote QuoteStyle, shape Shape) Action {
	return decisions[quote][shape]
}

// QuoteStyleAt reports the quote style of a literal whose payload starts at
// start, judged by the three bytes before it.
func QuoteStyleAt(text string, start int) QuoteStyle {
	if start >= 3 && start <= len(text) {
		if q := text[start-3 : start]; q == `'''` || q == `"""` {
			return TripleQuoted
		}
	}
	return SingleQuoted
}

// ShapeOf reports whether a formatted query spans several lines.
func ShapeOf(formatted string) Shape {
	if strings.Contains(formatted, "\n") {
		return MultiLine
	}
	return SingleLine
}

// Plan formats every token and returns the edits that splice the results
// into text. Tokens with a blank value are left alone.
func Plan(text string, tokens []Token, format FormatFunc) ([]splice.Edit, error) {
	var b splice.Builder
	for _, tok := range tokens {
		if strings.TrimSpace(tok.Value) == "" {
			continue
		}

		formatted, err := format(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("query on line %d: %w", tok.Line, err)
		}
		formatted = strings.Trim(formatted, "\n")
		if strings.TrimSpace(formatted) == "" {
			continue
		}

		switch Decide(QuoteStyleAt(text, tok.Start), ShapeOf(formatted)) {
		case ActionInline:
			b.Replace(tok.Start, tok.End, formatted)
		case ActionBlock:
			b.Replace(tok.Start, tok.End, "\n"+IndentQuery(formatted, tok.Indent)+"\n"+tok.Indent)
		case ActionPromote:
			delim := tripleDelimiter(formatted)
			b.Replace(tok.Start-1, tok.End+1,
				delim+"\n"+IndentQuery(formatted, tok.Indent)+"\n"+tok.Indent+delim)
		}
	}
	return b.Build(len(text))
}

// Reassemble rewrites text with every token's query reformatted. Text outside
// the token spans, and outside the quotes of promoted literals, is copied
// unchanged.
func Reassemble(text string, tokens []Token, format FormatFunc) (string, error) {
	edits, err := Plan(text, tokens, format)
	if err != nil {
		return "", err
	}
	return splice.Apply(text, edits), nil
}

// tripleDelimiter picks the delimiter for a promoted literal.
func tripleDelimiter(formatted string) string {
	if strings.Contains(formatted, `'''`) {
		return `"""`
	}
	return `'''`
}
