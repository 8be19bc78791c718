// Package querylit finds SQL query literals embedded in Python source and
// splices reformatted queries back in place.
//
// Three steps make up a rewrite. Scan locates query literals: string
// arguments of configured call sites, and strings assigned to variables whose
// names match configured patterns. ResolveIndent decides the indentation each
// reformatted query is anchored to. Reassemble replaces every literal payload,
// promoting single-quoted literals to triple quotes when the formatted query
// spans several lines.
package querylit

import "errors"

// ErrNoMatchFound is returned when a call site passes an identifier that has
// no string assignment before the call.
var ErrNoMatchFound = errors.New("no matching query assignment found")

// Kind distinguishes how a query literal was found.
type Kind uint8

const (
	// ArgumentLiteral is a query passed inline as a call argument.
	ArgumentLiteral Kind = iota + 1

	// VariableLiteral is a query assigned to a variable, either matched by
	// name pattern or referenced by identifier at a call site.
	VariableLiteral
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case ArgumentLiteral:
		return "argument"
	case VariableLiteral:
		return "variable"
	default:
		return "unknown"
	}
}

// ResolutionPolicy selects the assignment an identifier argument refers to.
type ResolutionPolicy uint8

const (
	// LastBeforeUse picks the lexically last assignment before the call site,
	// regardless of control flow. A variable reassigned in one branch of a
	// conditional therefore resolves to whichever branch comes last.
	LastBeforeUse ResolutionPolicy = iota
)

// Token is one query literal occurrence in a buffer.
type Token struct {
	Kind Kind

	// Value is the raw query text with quotes and prefix stripped.
	Value string

	// Start and End delimit Value in the buffer (half-open).
	Start int
	End   int

	// Indent is the indentation every line of the reformatted query gets.
	Indent string

	// Name is the assigned variable for VariableLiteral tokens.
	Name string

	// Line is the 1-based line of Start.
	Line int
}
