package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// BackupMode specifies how backups are stored.
type BackupMode string

const (
	// BackupModeSidecar writes path+BackupSuffix next to the file.
	BackupModeSidecar BackupMode = "sidecar"

	// BackupModeNone disables backups.
	BackupModeNone BackupMode = "none"
)

// BackupSuffix is appended to a file's path to name its sidecar backup.
const BackupSuffix = ".pysqlfmt.bak"

// BackupConfig controls backup behavior.
type BackupConfig struct {
	Enabled bool
	Mode    BackupMode
}

// Path returns the backup path for path, or "" when backups are off.
func (c BackupConfig) Path(path string) string {
	if !c.Enabled || c.Mode == BackupModeNone {
		return ""
	}
	return path + BackupSuffix
}

// Backup saves content, the pre-formatting bytes of path, as its backup.
// An existing backup is kept so repeated runs preserve the oldest content.
// It reports whether a backup was written.
func Backup(ctx context.Context, path string, content []byte, mode os.FileMode, cfg BackupConfig) (bool, error) {
	backupPath := cfg.Path(path)
	if backupPath == "" {
		return false, nil
	}

	_, err := os.Stat(backupPath)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat backup: %w", err)
	}

	if err := WriteAtomic(ctx, backupPath, content, mode); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}
	return true, nil
}
