// Package runner formats many files concurrently.
package runner

import (
	"github.com/yaklabco/pysqlfmt/pkg/config"
	"github.com/yaklabco/pysqlfmt/pkg/markdown"
)

// Mode selects what happens to formatted output.
type Mode int

const (
	// ModePrint keeps the formatted content in the result; files are
	// not touched.
	ModePrint Mode = iota

	// ModeWrite rewrites changed files in place.
	ModeWrite

	// ModeCheck reports files that would change.
	ModeCheck

	// ModeDiff computes a unified diff for each changed file.
	ModeDiff
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeCheck:
		return "check"
	case ModeDiff:
		return "diff"
	default:
		return "print"
	}
}

// ModeFromConfig derives the run mode from CLI-level settings. Check and
// diff never write, so they win over in-place.
func ModeFromConfig(cfg *config.Config) Mode {
	switch {
	case cfg == nil:
		return ModePrint
	case cfg.Check:
		return ModeCheck
	case cfg.Diff || cfg.Format == config.FormatDiff:
		return ModeDiff
	case cfg.InPlace:
		return ModeWrite
	default:
		return ModePrint
	}
}

// Options controls a multi-file run.
type Options struct {
	// Paths are the user-specified files or directories.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// to format. Defaults to DefaultExtensions, plus the Markdown
	// extensions when Markdown is enabled in Config.
	Extensions []string

	// IncludeGlobs restrict discovery to matching paths, relative to WorkingDir.
	IncludeGlobs []string

	// ExcludeGlobs are glob patterns used to skip files or directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// DetectScripts also formats extensionless files detected as Python
	// scripts.
	DetectScripts bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means runtime.NumCPU().
	Jobs int

	// Mode selects what happens to formatted output.
	Mode Mode

	// Config is the resolved configuration for this run.
	Config *config.Config
}

// DefaultExtensions returns the Python source extensions.
func DefaultExtensions() []string {
	return []string{".py"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) > 0 {
		return o.Extensions
	}
	exts := DefaultExtensions()
	if o.Config != nil && o.Config.Markdown.Enabled {
		exts = append(exts, markdown.Extensions()...)
	}
	return exts
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
