package formatter

import (
	"context"
	"fmt"
	"io"

	"github.com/yaklabco/pysqlfmt/internal/logging"
	"github.com/yaklabco/pysqlfmt/pkg/fsutil"
)

// FormatFile formats the Python file at path with a Formatter built from
// opts. See Formatter.FormatFile.
func FormatFile(ctx context.Context, path string, opts Options, inPlace bool, w io.Writer) error {
	f, err := New(opts)
	if err != nil {
		return err
	}
	return f.FormatFile(ctx, path, inPlace, w)
}

// FormatFile formats the file at path. With inPlace the file is replaced
// atomically, and only when the content changes; otherwise the formatted
// text is written to w.
func (f *Formatter) FormatFile(ctx context.Context, path string, inPlace bool, w io.Writer) error {
	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	ctx = logging.With(ctx, logging.FieldPath, path)
	out, err := f.Format(ctx, string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if !inPlace {
		if _, err := io.WriteString(w, out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	if out == string(content) {
		logging.FromContext(ctx).Debug("already formatted")
		return nil
	}
	if err := fsutil.WriteAtomic(ctx, path, []byte(out), info.Mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logging.FromContext(ctx).Debug("rewrote file")
	return nil
}
