package runner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/pysqlfmt/pkg/langdetect"
)

// scriptHeadSize is how much of an extensionless file is read to find a
// shebang line.
const scriptHeadSize = 256

// Discover finds the files to format under opts.Paths: files with a
// matching extension and, with DetectScripts, extensionless Python scripts.
// Files named explicitly are subject to the same filters as walked ones.
// It returns a sorted, deduplicated list of absolute paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{
		ctx:        ctx,
		workDir:    workDir,
		extensions: opts.effectiveExtensions(),
		opts:       opts,
		seen:       make(map[string]struct{}),
	}

	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		// A missing input is an error, unlike unreadable entries found
		// while walking.
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		// Explicit files still go through the filters, so --ignore applies
		// to paths passed on the command line.
		if !info.IsDir() {
			if d.matches(abs) {
				d.add(abs)
			}
			continue
		}
		if err := d.walk(abs); err != nil {
			return nil, fmt.Errorf("walk directory %s: %w", abs, err)
		}
	}

	slices.Sort(d.files)
	return d.files, nil
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// discoverer accumulates the files of one Discover call.
type discoverer struct {
	ctx context.Context

	// workDir is the absolute base for relative paths and glob matching.
	workDir string

	// extensions are the lowercase extensions, dot included, that qualify
	// a file without content sniffing.
	extensions []string

	opts Options

	// seen deduplicates files reached through several inputs, such as a
	// directory and a file inside it.
	seen  map[string]struct{}
	files []string
}

// add records file once, keeping first-seen order until the final sort.
func (d *discoverer) add(file string) {
	if _, ok := d.seen[file]; ok {
		return
	}
	d.seen[file] = struct{}{}
	d.files = append(d.files, file)
}

// walk adds the matching files below root. Hidden entries and excluded
// directories are pruned; unreadable directories are skipped.
func (d *discoverer) walk(root string) error {
	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, walkErr error) error {
		if err := d.ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		// The root itself is never hidden, so `pysqlfmt format .` works.
		hidden := p != root && strings.HasPrefix(entry.Name(), ".")
		if entry.IsDir() {
			if hidden || matchesExcludePattern(d.rel(p), d.opts.ExcludeGlobs) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		// Symlinked files are formatted through their link path; symlinked
		// directories are only followed when asked.
		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(p)
			if err != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, err := os.Stat(target)
			if err != nil {
				return nil //nolint:nilerr // unreadable targets are skipped
			}
			if info.IsDir() {
				if !d.opts.FollowSymlinks {
					return nil
				}
				// Walk the target itself; WalkDir does not descend through
				// a symlinked root.
				return d.walk(target)
			}
		}

		if d.matches(p) {
			d.add(p)
		}
		return nil
	})
}

// rel returns p relative to the working directory, or p itself when no
// relative path exists (another volume on Windows).
func (d *discoverer) rel(p string) string {
	rel, err := filepath.Rel(d.workDir, p)
	if err != nil {
		return p
	}
	return rel
}

// matches applies matchesFile with the discoverer's settings.
func (d *discoverer) matches(file string) bool {
	return matchesFile(file, d.workDir, d.extensions, d.opts)
}

// matchesFile reports whether file passes the extension, script and glob
// filters.
func matchesFile(file, workDir string, extensions []string, opts Options) bool {
	ext := strings.ToLower(filepath.Ext(file))
	if !slices.Contains(extensions, ext) &&
		!(opts.DetectScripts && ext == "" && isPythonScript(file)) {
		return false
	}

	// Globs are written relative to the working directory.
	rel, err := filepath.Rel(workDir, file)
	if err != nil {
		rel = file
	}
	if matchesExcludePattern(rel, opts.ExcludeGlobs) {
		return false
	}
	return len(opts.IncludeGlobs) == 0 || matchesAnyGlob(rel, opts.IncludeGlobs)
}

// isPythonScript sniffs the head of an extensionless file. Unreadable
// files are not scripts.
func isPythonScript(file string) bool {
	f, err := os.Open(file)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, scriptHeadSize)
	n, _ := io.ReadFull(f, head)
	return langdetect.IsPythonScript(file, head[:n])
}

// matchesExcludePattern reports whether rel is ignored. Watch mode uses it
// to drop events for ignored paths.
func matchesExcludePattern(rel string, patterns []string) bool {
	return matchesAnyGlob(rel, patterns)
}

func matchesAnyGlob(rel string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(pattern string) bool {
		return matchGlob(rel, pattern)
	})
}

// matchGlob matches a slash-separated relative path against pattern. A
// pattern without a slash matches any single path component, so "*.py" and
// "build" match at any depth. Otherwise the pattern is anchored at the
// working directory and "**" spans zero or more components, as in
// "build/**" or "**/migrations/*.py".
func matchGlob(rel, pattern string) bool {
	rel = filepath.ToSlash(rel)
	pattern = strings.Trim(filepath.ToSlash(pattern), "/")
	if pattern == "" {
		return false
	}

	parts := strings.Split(rel, "/")
	if !strings.Contains(pattern, "/") && pattern != "**" {
		return slices.ContainsFunc(parts, func(part string) bool {
			ok, _ := path.Match(pattern, part)
			return ok
		})
	}
	return matchSegments(strings.Split(pattern, "/"), parts)
}

// matchSegments matches path components one by one. A "**" segment tries
// every possible split of the remaining components.
func matchSegments(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			for i := 0; i <= len(parts); i++ {
				if matchSegments(pattern[1:], parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], parts[0]); !ok {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}
