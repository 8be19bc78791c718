// Package formatter formats SQL queries embedded in Python source.
//
// A Formatter pretty-prints the script, finds query literals with
// querylit.Scan, reformats each one, splices the results back and
// pretty-prints the rewritten script once more so the re-inserted blocks
// settle into the surrounding layout.
package formatter

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/pysqlfmt/internal/logging"
	"github.com/yaklabco/pysqlfmt/pkg/pyfmt"
	"github.com/yaklabco/pysqlfmt/pkg/querylit"
	"github.com/yaklabco/pysqlfmt/pkg/sqlfmt"
)

var (
	// ErrCodeFormatter wraps failures of the Python code formatter.
	ErrCodeFormatter = errors.New("code formatter failed")

	// ErrQueryFormatter wraps failures of the SQL query formatter.
	ErrQueryFormatter = errors.New("query formatter failed")
)

// CodeFormatter pretty-prints Python source. Implementations must be
// idempotent.
type CodeFormatter interface {
	Format(ctx context.Context, src string) (string, error)
}

// QueryFormatter reformats a single SQL query.
type QueryFormatter interface {
	Format(query string) (string, error)
}

// Options configures FormatScript, FormatFile and New.
type Options struct {
	// PythonStyle is a named style or a yapf style file.
	PythonStyle string

	// PythonEngine selects the code formatter backend.
	PythonEngine pyfmt.Engine

	// PythonCommand overrides the yapf executable.
	PythonCommand string

	// SQLStyle is anything sqlfmt.ResolveStyle accepts.
	SQLStyle any

	// QueryNames are variable-name substrings marking query variables.
	QueryNames []string

	// Callees are the dotted call names whose first argument is a query.
	Callees []string
}

// ScanOptions returns the scanner configuration derived from o.
func (o Options) ScanOptions() querylit.ScanOptions {
	return querylit.ScanOptions{
		Callees:    o.Callees,
		QueryNames: o.QueryNames,
		Policy:     querylit.LastBeforeUse,
	}
}

// Formatter runs the full pipeline with fixed collaborators. It holds no
// per-call state and is safe for concurrent use when its collaborators are.
type Formatter struct {
	code  CodeFormatter
	query QueryFormatter
	scan  querylit.ScanOptions
}

// New builds a Formatter from options. The SQL style is resolved first so
// an unsupported style value fails before any source is touched.
func New(opts Options) (*Formatter, error) {
	style, err := sqlfmt.ResolveStyle(opts.SQLStyle)
	if err != nil {
		return nil, fmt.Errorf("sql style: %w", err)
	}

	query, err := sqlfmt.New(style)
	if err != nil {
		return nil, fmt.Errorf("sql style: %w", err)
	}

	code, err := pyfmt.New(pyfmt.Options{
		Engine:  opts.PythonEngine,
		Style:   opts.PythonStyle,
		Command: opts.PythonCommand,
	})
	if err != nil {
		return nil, fmt.Errorf("python style: %w", err)
	}

	return NewWith(code, query, opts.ScanOptions()), nil
}

// NewWith builds a Formatter around caller-supplied collaborators.
func NewWith(code CodeFormatter, query QueryFormatter, scan querylit.ScanOptions) *Formatter {
	return &Formatter{code: code, query: query, scan: scan}
}

// Format returns script with every recognized query reformatted. Any
// failure aborts the whole call; no partial output is returned.
func (f *Formatter) Format(ctx context.Context, script string) (string, error) {
	logger := logging.FromContext(ctx)

	pretty, err := f.code.Format(ctx, script)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCodeFormatter, err)
	}

	tokens, err := querylit.Scan(pretty, f.scan)
	if err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		logger.Debug("no query literals found")
		return pretty, nil
	}

	for _, tok := range tokens {
		logger.Debug("query literal",
			logging.FieldKind, tok.Kind,
			logging.FieldLine, tok.Line,
		)
	}

	rewritten, err := querylit.Reassemble(pretty, tokens, f.formatQuery)
	if err != nil {
		return "", err
	}

	out, err := f.code.Format(ctx, rewritten)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCodeFormatter, err)
	}

	logger.Debug("formatted script", logging.FieldQueries, len(tokens))
	return out, nil
}

func (f *Formatter) formatQuery(query string) (string, error) {
	out, err := f.query.Format(query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrQueryFormatter, err)
	}
	return out, nil
}

// FormatScript formats script with a Formatter built from opts.
func FormatScript(ctx context.Context, script string, opts Options) (string, error) {
	f, err := New(opts)
	if err != nil {
		return "", err
	}
	return f.Format(ctx, script)
}
