// Package pyfmt pretty-prints Python source.
//
// Two engines are available. The builtin engine normalizes layout without
// touching string literals: line endings, trailing whitespace, blank lines
// between statements and around top-level definitions, and the final
// newline. The yapf engine pipes the source through an external yapf
// executable with the configured style.
package pyfmt

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Engine selects the formatting backend.
type Engine string

const (
	EngineBuiltin Engine = "builtin"
	EngineYapf    Engine = "yapf"
	EngineNone    Engine = "none"
)

// Named styles understood by every engine.
const (
	StylePEP8     = "pep8"
	StyleGoogle   = "google"
	StyleFacebook = "facebook"
	StyleYapf     = "yapf"
)

// DefaultCommand is the yapf executable looked up on PATH.
const DefaultCommand = "yapf"

var (
	// ErrUnknownEngine is returned for an unrecognized engine name.
	ErrUnknownEngine = errors.New("unknown python formatter engine")

	// ErrUnsupportedStyle is returned when the engine cannot apply a style.
	ErrUnsupportedStyle = errors.New("unsupported python style")
)

var namedStyles = []string{StylePEP8, StyleGoogle, StyleFacebook, StyleYapf}

// IsNamedStyle reports whether style is one of the predefined style names.
func IsNamedStyle(style string) bool {
	return slices.Contains(namedStyles, style)
}

// Options configures a Formatter.
type Options struct {
	// Engine defaults to EngineBuiltin.
	Engine Engine

	// Style is a named style or, for the yapf engine, a style file path.
	// Defaults to StylePEP8.
	Style string

	// Command is the yapf executable. Defaults to DefaultCommand.
	Command string
}

// Formatter formats Python source with a fixed engine and style. It is safe
// for concurrent use.
type Formatter struct {
	opts   Options
	format func(ctx context.Context, src string) (string, error)
}

// New creates a Formatter.
func New(opts Options) (*Formatter, error) {
	if opts.Engine == "" {
		opts.Engine = EngineBuiltin
	}
	if opts.Style == "" {
		opts.Style = StylePEP8
	}
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}

	f := &Formatter{opts: opts}
	switch opts.Engine {
	case EngineBuiltin:
		if !IsNamedStyle(opts.Style) {
			return nil, fmt.Errorf("%w: %q (style files need the %s engine)", ErrUnsupportedStyle, opts.Style, EngineYapf)
		}
		f.format = formatBuiltin
	case EngineYapf:
		f.format = func(ctx context.Context, src string) (string, error) {
			return runYapf(ctx, opts.Command, opts.Style, src)
		}
	case EngineNone:
		f.format = func(_ context.Context, src string) (string, error) {
			return src, nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, opts.Engine)
	}
	return f, nil
}

// Options returns the resolved options.
func (f *Formatter) Options() Options {
	return f.opts
}

// Format returns the formatted source.
func (f *Formatter) Format(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.format(ctx, src)
}
