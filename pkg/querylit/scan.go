package querylit

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/pysqlfmt/pkg/pysource"
)

// Defaults applied when ScanOptions leaves a field empty.
var (
	DefaultCallees    = []string{"spark.sql"}
	DefaultQueryNames = []string{"query"}
)

// ScanOptions configures which literals Scan reports.
type ScanOptions struct {
	// Callees are dotted call targets whose first argument is a query,
	// such as "spark.sql".
	Callees []string

	// QueryNames are case-insensitive substrings that mark a variable as
	// holding a query.
	QueryNames []string

	// Policy selects the assignment an identifier argument resolves to.
	Policy ResolutionPolicy
}

func (o ScanOptions) withDefaults() ScanOptions {
	if len(o.Callees) == 0 {
		o.Callees = DefaultCallees
	}
	if len(o.QueryNames) == 0 {
		o.QueryNames = DefaultQueryNames
	}
	return o
}

// assignment is a statement of the form NAME = <string literal>.
type assignment struct {
	name string
	str  pysource.Token
}

// Scan finds the query literals in text and returns them ordered by Start,
// each span reported once.
//
// A call site is a configured callee followed by "(" whose first argument is
// a lone string literal or identifier. An identifier resolves to an earlier
// assignment per opts.Policy; if none exists Scan fails with ErrNoMatchFound.
// Assignments whose target name contains a query name are reported as
// well. Unterminated and bytes literals never match and are left alone.
func Scan(text string, opts ScanOptions) ([]Token, error) {
	opts = opts.withDefaults()

	tokens := significant(pysource.Tokenize(text))
	assigns := findAssignments(tokens)

	var found []Token

	for _, callee := range opts.Callees {
		parts := splitCallee(callee)
		if len(parts) == 0 {
			continue
		}
		for i := range tokens {
			argIdx, ok := matchCall(tokens, i, parts)
			if !ok {
				continue
			}
			arg := tokens[argIdx]
			switch {
			case isQueryString(arg):
				found = append(found, newToken(text, ArgumentLiteral, arg, ""))
			case arg.Kind == pysource.KindName && !isConstant(arg.Text):
				a, ok := resolve(assigns, arg.Text, tokens[i].Start, opts.Policy)
				if !ok {
					return nil, fmt.Errorf("%w: %q passed to %s on line %d",
						ErrNoMatchFound, arg.Text, callee, tokens[i].Line)
				}
				found = append(found, newToken(text, VariableLiteral, a.str, a.name))
			}
		}
	}

	for _, a := range assigns {
		if matchesQueryName(a.name, opts.QueryNames) {
			found = append(found, newToken(text, VariableLiteral, a.str, a.name))
		}
	}

	return dedupe(found), nil
}

func newToken(text string, kind Kind, str pysource.Token, name string) Token {
	return Token{
		Kind:   kind,
		Value:  str.Content(text),
		Start:  str.ContentStart,
		End:    str.ContentEnd,
		Indent: ResolveIndent(str.ContentStart, text, kind),
		Name:   name,
		Line:   str.Line,
	}
}

// significant drops comments, which never affect matching.
func significant(tokens []pysource.Token) []pysource.Token {
	out := make([]pysource.Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind != pysource.KindComment {
			out = append(out, tok)
		}
	}
	return out
}

func splitCallee(callee string) []string {
	var parts []string
	for _, part := range strings.Split(callee, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil
		}
		parts = append(parts, part)
	}
	return parts
}

// matchCall reports whether a call to the dotted name parts starts at
// tokens[i] with a single-token first argument, and returns its index.
func matchCall(tokens []pysource.Token, i int, parts []string) (int, bool) {
	j := i
	for n, part := range parts {
		if n > 0 {
			if j >= len(tokens) || !tokens[j].Is(".") {
				return 0, false
			}
			j++
		}
		if j >= len(tokens) || tokens[j].Kind != pysource.KindName || tokens[j].Text != part {
			return 0, false
		}
		j++
	}
	if j+2 >= len(tokens) || !tokens[j].Is("(") {
		return 0, false
	}
	if next := tokens[j+2]; !next.Is(")") && !next.Is(",") {
		return 0, false
	}
	return j + 1, true
}

func findAssignments(tokens []pysource.Token) []assignment {
	var out []assignment
	for i := 0; i+3 < len(tokens); i++ {
		name, eq, str, end := tokens[i], tokens[i+1], tokens[i+2], tokens[i+3]
		if name.Kind != pysource.KindName || name.Depth != 0 || !eq.Is("=") || !isQueryString(str) {
			continue
		}
		if end.Kind != pysource.KindNewline && end.Kind != pysource.KindEOF && !end.Is(";") {
			continue
		}
		out = append(out, assignment{name: name.Text, str: str})
	}
	return out
}

func isQueryString(tok pysource.Token) bool {
	return tok.Kind == pysource.KindString && tok.Terminated && !tok.IsBytes()
}

func isConstant(name string) bool {
	return name == "None" || name == "True" || name == "False"
}

func resolve(assigns []assignment, name string, before int, policy ResolutionPolicy) (assignment, bool) {
	switch policy {
	case LastBeforeUse:
		for i := len(assigns) - 1; i >= 0; i-- {
			if a := assigns[i]; a.name == name && a.str.End <= before {
				return a, true
			}
		}
	}
	return assignment{}, false
}

func matchesQueryName(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func dedupe(tokens []Token) []Token {
	slices.SortStableFunc(tokens, func(a, b Token) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return slices.CompactFunc(tokens, func(a, b Token) bool {
		return a.Start == b.Start
	})
}
