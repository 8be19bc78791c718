// Package sqlfmt formats Spark SQL and HiveQL query text.
//
// The formatter works on a token stream rather than a syntax tree: it never
// rejects a query, and text it does not understand is passed through with
// normalized spacing. Clause heads start their own line, clause bodies are
// indented one level, top-level list items and join phrases get a line each,
// and subqueries are indented inside their parentheses.
package sqlfmt

import "strings"

// Formatter formats queries with a fixed style. It is safe for concurrent use.
type Formatter struct {
	style Style
}

// New creates a Formatter for the given style.
func New(style Style) (*Formatter, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	return &Formatter{style: style}, nil
}

// Style returns the formatter's style.
func (f *Formatter) Style() Style {
	return f.style
}

// Format reformats a query. Leading and trailing blank lines are stripped;
// a blank query formats to the empty string.
func (f *Formatter) Format(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}
	p := newPrinter(f.style, tokenize(query))
	p.run()
	return p.String(), nil
}
