package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

// ConfigPaths holds the configuration files found for one run, lowest
// precedence first. An empty field means no file at that layer.
type ConfigPaths struct {
	System   string // /etc/pysqlfmt/config.yaml
	User     string // $XDG_CONFIG_HOME/pysqlfmt/config.yaml
	Project  string // nearest .pysqlfmt.yml at or above the working directory
	Explicit string // --config
}

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	projectFileNames = []string{".pysqlfmt.yml", ".pysqlfmt.yaml", "pysqlfmt.yml", "pysqlfmt.yaml"}
	layerFileNames   = []string{"config.yaml", "config.yml"}
	vcsMarkers       = []string{".git", ".hg", ".svn"}
)

// DiscoverPaths locates the system, user and project configuration files
// for a run rooted at workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  firstFile(systemConfigDir(), layerFileNames),
		User:    firstFile(userConfigDir(), layerFileNames),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return "/etc/pysqlfmt"
	}
	base := os.Getenv("ProgramData")
	if base == "" {
		base = `C:\ProgramData`
	}
	return filepath.Join(base, "pysqlfmt")
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pysqlfmt")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pysqlfmt")
}

// FindProjectConfig walks from startDir towards the filesystem root and
// returns the first project config file it sees. The walk ends without a
// result at a repository root or at the user's home directory.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	dir, err := resolveWorkDir(startDir)
	if err != nil {
		return "", err
	}

	home, _ := os.UserHomeDir()
	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}

		if found := firstFile(dir, projectFileNames); found != "" {
			return found, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir || dir == home || isRepositoryRoot(dir) {
			return "", nil
		}
		dir = parent
	}
}

func resolveWorkDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// isRepositoryRoot reports whether dir holds a VCS marker. Git worktrees
// and submodules use a .git file, so any entry counts.
func isRepositoryRoot(dir string) bool {
	return slices.ContainsFunc(vcsMarkers, func(marker string) bool {
		_, err := os.Lstat(filepath.Join(dir, marker))
		return err == nil
	})
}

// firstFile returns the first regular file named in names inside dir.
func firstFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
