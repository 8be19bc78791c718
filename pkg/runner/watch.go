package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/pysqlfmt/internal/logging"
)

// watchDebounce batches the burst of events a single save produces.
const watchDebounce = 150 * time.Millisecond

// Watch formats files under opts.Paths each time they are created or
// written, until ctx is done. Every batch of changed files is run with
// RunFiles and its result handed to report. Directories created under a
// watched tree are watched as well.
func (r *Runner) Watch(ctx context.Context, opts Options, report func(*Result)) error {
	logger := logging.FromContext(ctx)

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	ws := &watchSet{
		watcher:    watcher,
		workDir:    workDir,
		opts:       opts,
		extensions: opts.effectiveExtensions(),
		trees:      make(map[string]bool),
		explicit:   make(map[string]bool),
	}
	for _, path := range opts.effectivePaths() {
		if err := ws.add(path); err != nil {
			return err
		}
	}
	logger.Info("watching for changes", logging.FieldPaths, opts.effectivePaths())

	pending := make(map[string]struct{})
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if event.Has(fsnotify.Create) && ws.trees[filepath.Dir(event.Name)] {
					if err := ws.addTree(event.Name); err != nil {
						logger.Warn("cannot watch directory", logging.FieldPath, event.Name, logging.FieldError, err)
					}
				}
				continue
			}
			if !ws.wants(event.Name) {
				continue
			}
			logger.Debug("file event", logging.FieldPath, event.Name, logging.FieldEvent, event.Op.String())
			pending[event.Name] = struct{}{}
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", logging.FieldError, err)

		case <-timer.C:
			files := make([]string, 0, len(pending))
			for path := range pending {
				files = append(files, path)
			}
			clear(pending)
			sort.Strings(files)

			result, err := r.RunFiles(ctx, files, opts)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			report(result)
		}
	}
}

// watchSet tracks which directories are watched and which files matter.
type watchSet struct {
	watcher    *fsnotify.Watcher
	workDir    string
	opts       Options
	extensions []string

	// trees holds recursively watched directories.
	trees map[string]bool

	// explicit holds files named directly in Paths.
	explicit map[string]bool
}

func (ws *watchSet) add(path string) error {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(ws.workDir, abs)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return ws.addTree(abs)
	}

	ws.explicit[abs] = true
	if err := ws.watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return nil
}

func (ws *watchSet) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		if rel, err := filepath.Rel(ws.workDir, path); err == nil && path != root &&
			matchesExcludePattern(rel, ws.opts.ExcludeGlobs) {
			return filepath.SkipDir
		}
		if err := ws.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		ws.trees[path] = true
		return nil
	})
}

func (ws *watchSet) wants(path string) bool {
	if ws.explicit[path] {
		return true
	}
	if !ws.trees[filepath.Dir(path)] || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return matchesFile(path, ws.workDir, ws.extensions, ws.opts)
}
