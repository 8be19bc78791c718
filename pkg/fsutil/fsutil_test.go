package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/pysqlfmt/pkg/fsutil"
)

func write(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	t.Run("snapshot", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(dir, "job.py")
		write(t, path, "x = 1\n", 0o640)

		content, snap, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "x = 1\n", string(content))
		assert.Equal(t, path, snap.Path)
		assert.Equal(t, int64(6), snap.Size)
		if runtime.GOOS != "windows" {
			assert.Equal(t, os.FileMode(0o640), snap.Mode.Perm())
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(ctx, filepath.Join(dir, "missing.py"))
		require.ErrorIs(t, err, fsutil.ErrNotFound)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(ctx, dir)
		require.ErrorIs(t, err, fsutil.ErrIsDirectory)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := fsutil.ReadFile(canceled, filepath.Join(dir, "job.py"))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSnapshot_Changed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	setup := func(t *testing.T) (string, *fsutil.Snapshot) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "job.py")
		write(t, path, "x = 1\n", 0o644)
		_, snap, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)
		return path, snap
	}

	t.Run("unchanged", func(t *testing.T) {
		t.Parallel()

		_, snap := setup(t)
		for _, strict := range []bool{false, true} {
			changed, err := snap.Changed(ctx, strict)
			require.NoError(t, err)
			assert.False(t, changed)
		}
	})

	t.Run("size change", func(t *testing.T) {
		t.Parallel()

		path, snap := setup(t)
		write(t, path, "x = 10\n", 0o644)
		changed, err := snap.Changed(ctx, false)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("same size and time needs strict", func(t *testing.T) {
		t.Parallel()

		path, snap := setup(t)
		write(t, path, "y = 1\n", 0o644)
		require.NoError(t, os.Chtimes(path, snap.ModTime, snap.ModTime))

		quick, err := snap.Changed(ctx, false)
		require.NoError(t, err)
		assert.False(t, quick)

		strict, err := snap.Changed(ctx, true)
		require.NoError(t, err)
		assert.True(t, strict)
	})

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		path, snap := setup(t)
		require.NoError(t, os.Remove(path))
		changed, err := snap.Changed(ctx, true)
		require.NoError(t, err)
		assert.True(t, changed)
	})
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("replaces content and mode", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "job.py")
		write(t, path, "old\n", 0o600)

		require.NoError(t, fsutil.WriteAtomic(ctx, path, []byte("new\n"), 0o755))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new\n", string(got))
		if runtime.GOOS != "windows" {
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
		}

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temp files left behind")
	})

	t.Run("default mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "new.py")
		require.NoError(t, fsutil.WriteAtomic(ctx, path, []byte("x\n"), 0))
		if runtime.GOOS != "windows" {
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, fsutil.DefaultFileMode, info.Mode().Perm())
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nope", "job.py")
		require.Error(t, fsutil.WriteAtomic(ctx, path, []byte("x\n"), 0))
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := fsutil.WriteAtomic(canceled, filepath.Join(t.TempDir(), "job.py"), nil, 0)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sidecar := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}

	t.Run("paths", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "/src/job.py.pysqlfmt.bak", sidecar.Path("/src/job.py"))
		assert.Empty(t, fsutil.BackupConfig{Mode: fsutil.BackupModeSidecar}.Path("/src/job.py"))
		assert.Empty(t, fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeNone}.Path("/src/job.py"))
	})

	t.Run("writes once", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "job.py")

		created, err := fsutil.Backup(ctx, path, []byte("first\n"), 0o644, sidecar)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = fsutil.Backup(ctx, path, []byte("second\n"), 0o644, sidecar)
		require.NoError(t, err)
		assert.False(t, created)

		got, err := os.ReadFile(path + fsutil.BackupSuffix)
		require.NoError(t, err)
		assert.Equal(t, "first\n", string(got))
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "job.py")
		created, err := fsutil.Backup(ctx, path, []byte("x\n"), 0o644, fsutil.BackupConfig{})
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoFileExists(t, path+fsutil.BackupSuffix)
	})
}

func FuzzWriteAtomic(f *testing.F) {
	f.Add([]byte("query = 'select 1'\n"))
	f.Add([]byte{})
	f.Add([]byte("\x00\xff\r\n"))

	dir := f.TempDir()
	f.Fuzz(func(t *testing.T, content []byte) {
		path := filepath.Join(dir, "fuzz.py")
		if err := fsutil.WriteAtomic(context.Background(), path, content, 0o644); err != nil {
			t.Fatal(err)
		}
		got, snap, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(content) || snap.Size != int64(len(content)) {
			t.Fatalf("round trip mismatch: %q != %q", got, content)
		}
	})
}

