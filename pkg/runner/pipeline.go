package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/pysqlfmt/internal/logging"
	"github.com/yaklabco/pysqlfmt/pkg/config"
	"github.com/yaklabco/pysqlfmt/pkg/formatter"
	"github.com/yaklabco/pysqlfmt/pkg/fsutil"
	"github.com/yaklabco/pysqlfmt/pkg/markdown"
	"github.com/yaklabco/pysqlfmt/pkg/pyfmt"
	"github.com/yaklabco/pysqlfmt/pkg/udiff"
)

var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrFormatFailure indicates the content could not be formatted.
	ErrFormatFailure = errors.New("format failure")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// Kind is the document type of a processed file.
type Kind string

const (
	KindPython   Kind = "python"
	KindMarkdown Kind = "markdown"
)

// KindOf classifies path by its extension.
func KindOf(path string) Kind {
	if slices.Contains(markdown.Extensions(), strings.ToLower(filepath.Ext(path))) {
		return KindMarkdown
	}
	return KindPython
}

// FileResult is the outcome of running one file through the pipeline.
type FileResult struct {
	Path string
	Kind Kind

	// Changed is true when the formatted content differs from the input.
	Changed bool

	// Formatted is the full formatted content.
	Formatted []byte

	// Diff is set in check and diff modes when Changed.
	Diff *udiff.Diff

	// Blocks is the number of Markdown code blocks formatted.
	Blocks int

	// Skipped is true if the file changed on disk while being formatted.
	Skipped    bool
	SkipReason string

	BackupCreated bool
	Written       bool
}

// Summary returns a short human-readable status.
func (r *FileResult) Summary() string {
	switch {
	case r.Skipped:
		return "skipped: " + r.SkipReason
	case r.Written && r.BackupCreated:
		return "reformatted (backup created)"
	case r.Written:
		return "reformatted"
	case r.Changed:
		return "would reformat"
	default:
		return "unchanged"
	}
}

// PipelineOptions controls per-file behavior.
type PipelineOptions struct {
	Mode Mode

	// Backup configures backups taken before in-place writes.
	Backup fsutil.BackupConfig

	// StrictRaceDetection re-hashes the file before writing instead of
	// only comparing size and modification time.
	StrictRaceDetection bool

	// Markdown controls code block discovery in Markdown files.
	Markdown markdown.Options
}

// PipelineOptionsFromConfig derives pipeline options from cfg.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return PipelineOptions{
		Mode:                ModeFromConfig(cfg),
		Backup:              BackupConfigFromConfig(cfg),
		StrictRaceDetection: true,
		Markdown: markdown.Options{
			Flavor:          cfg.Markdown.Flavor,
			DetectUnlabeled: cfg.Markdown.DetectUnlabeled,
		},
	}
}

// BackupConfigFromConfig creates an fsutil.BackupConfig from cfg.
func BackupConfigFromConfig(cfg *config.Config) fsutil.BackupConfig {
	return fsutil.BackupConfig{
		Enabled: cfg.Backups.Enabled && !cfg.NoBackups,
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
}

// FormatterOptionsFromConfig maps cfg onto formatter options.
func FormatterOptionsFromConfig(cfg *config.Config) formatter.Options {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return formatter.Options{
		PythonStyle:   cfg.Python.Style,
		PythonEngine:  pyfmt.Engine(cfg.Python.Engine),
		PythonCommand: cfg.Python.Command,
		SQLStyle:      cfg.SQL.Style,
		QueryNames:    cfg.QueryNames,
		Callees:       cfg.Callees,
	}
}

// Pipeline formats single files.
type Pipeline struct {
	Formatter *formatter.Formatter
}

// NewPipeline creates a pipeline around f.
func NewPipeline(f *formatter.Formatter) *Pipeline {
	return &Pipeline{Formatter: f}
}

// ProcessFile runs the pipeline for the file at path:
//  1. Read the file and snapshot its state.
//  2. Format it as Python or, by extension, as Markdown.
//  3. In check and diff modes compute the diff and stop.
//  4. In write mode, skip the file if it changed on disk meanwhile, back it
//     up and replace it atomically.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, opts PipelineOptions) (*FileResult, error) {
	content, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	ctx = logging.With(ctx, logging.FieldPath, path)
	result, err := p.ProcessContent(ctx, path, content, opts)
	if err != nil {
		return nil, err
	}
	if opts.Mode != ModeWrite || !result.Changed {
		return result, nil
	}

	changed, err := snap.Changed(ctx, opts.StrictRaceDetection)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if changed {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		logging.FromContext(ctx).Warn("skipping file modified during formatting")
		return result, nil
	}

	created, err := fsutil.Backup(ctx, path, content, snap.Mode, opts.Backup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.BackupCreated = created

	if err := fsutil.WriteAtomic(ctx, path, result.Formatted, snap.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true
	logging.FromContext(ctx).Debug("rewrote file", logging.FieldKind, result.Kind)

	return result, nil
}

// ProcessContent formats content without touching the file system. path
// selects the document kind and labels the diff.
func (p *Pipeline) ProcessContent(
	ctx context.Context,
	path string,
	content []byte,
	opts PipelineOptions,
) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing cancelled: %w", err)
	}

	result := &FileResult{Path: path, Kind: KindOf(path)}
	src := string(content)

	var (
		out string
		err error
	)
	switch result.Kind {
	case KindMarkdown:
		out, result.Blocks, err = markdown.Format(ctx, src, p.Formatter.Format, opts.Markdown)
	default:
		out, err = p.Formatter.Format(ctx, src)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormatFailure, err)
	}

	result.Formatted = []byte(out)
	result.Changed = out != src
	if result.Changed && (opts.Mode == ModeCheck || opts.Mode == ModeDiff) {
		result.Diff = udiff.Compute(path, src, out)
	}
	return result, nil
}

// categorizeError wraps an error with the matching pipeline error.
func categorizeError(err error) error {
	switch {
	case errors.Is(err, fsutil.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}
