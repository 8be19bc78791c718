// Package pysource provides a minimal lexer for Python source text.
//
// The lexer recognizes exactly what is needed to locate string literals and
// call sites reliably: names, numbers, operators, brackets, comments, string
// literals of every quoting style and logical line ends. It never builds a
// syntax tree and never rejects input.
package pysource

// Kind represents the type of a lexical token.
type Kind uint8

const (
	KindEOF Kind = iota
	KindName
	KindNumber
	KindString
	KindOp
	KindComment
	KindNewline // logical line end at bracket depth zero
)

var kindNames = [...]string{
	KindEOF:     "EOF",
	KindName:    "Name",
	KindNumber:  "Number",
	KindString:  "String",
	KindOp:      "Op",
	KindComment: "Comment",
	KindNewline: "Newline",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Token is a lexical unit pointing back into the source.
type Token struct {
	Kind Kind

	// Start and End delimit the token in the source (half-open).
	Start int
	End   int

	// Line is the 1-based line of Start.
	Line int

	// Depth is the bracket nesting depth before the token.
	Depth int

	// Text is the raw source text of the token.
	Text string

	// The remaining fields are only set for KindString.

	// Prefix holds string prefix letters such as r, f or rb.
	Prefix string

	// Quote is the opening delimiter: one of ' " ''' """.
	Quote string

	// ContentStart and ContentEnd delimit the literal payload with the
	// prefix and quotes excluded.
	ContentStart int
	ContentEnd   int

	// Terminated reports whether the closing delimiter was found.
	Terminated bool
}

// IsTriple reports whether the token is a triple-quoted string.
func (t Token) IsTriple() bool {
	return len(t.Quote) == 3
}

// IsBytes reports whether the token is a bytes literal.
func (t Token) IsBytes() bool {
	for i := range len(t.Prefix) {
		if t.Prefix[i] == 'b' || t.Prefix[i] == 'B' {
			return true
		}
	}
	return false
}

// Content returns the payload of a string token.
func (t Token) Content(src string) string {
	return src[t.ContentStart:t.ContentEnd]
}

// Is reports whether the token is an operator with the given text.
func (t Token) Is(op string) bool {
	return t.Kind == KindOp && t.Text == op
}
