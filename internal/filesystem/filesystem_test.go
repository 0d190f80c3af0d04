package filesystem

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemHandler(t *testing.T) *Handler {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/sub", 0o755))
	require.NoError(t, fs.MkdirAll("/empty", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/data/b.txt", []byte("b"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/a.txt", []byte("aa"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/data/C.txt", []byte("c"), 0o644))

	return NewHandler(fs, nil)
}

// TestReadDir_Success tests that entries are returned sorted byte-wise.
func TestReadDir_Success(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)

	entries, err := h.ReadDir("/data")
	require.NoError(t, err, "ReadDir() should not fail")

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	assert.Equal(t, []string{"C.txt", "a.txt", "b.txt", "sub"}, names, "Entries should be sorted byte-wise")
}

// TestReadDir_Fail tests reading a directory that does not exist.
func TestReadDir_Fail(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)

	_, err := h.ReadDir("/missing")
	require.ErrorIs(t, err, os.ErrNotExist, "ReadDir() should fail with a not-exist error")
}

// TestExists_Success tests existence checks.
func TestExists_Success(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)

	exists, err := h.Exists("/data/a.txt")
	require.NoError(t, err)
	assert.True(t, exists, "Existing file should exist")

	exists, err = h.Exists("/data/missing.txt")
	require.NoError(t, err, "Missing paths should not be an error")
	assert.False(t, exists, "Missing file should not exist")
}

// TestIsDir_Success tests directory checks.
func TestIsDir_Success(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)

	isDir, err := h.IsDir("/data/sub")
	require.NoError(t, err)
	assert.True(t, isDir, "Directory should be reported as directory")

	isDir, err = h.IsDir("/data/a.txt")
	require.NoError(t, err)
	assert.False(t, isDir, "File should not be reported as directory")

	isDir, err = h.IsDir("/nothing")
	require.NoError(t, err)
	assert.False(t, isDir, "Missing path should not be reported as directory")
}

// TestIsEmptyFolder_Success tests empty folder checks.
func TestIsEmptyFolder_Success(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)

	empty, err := h.IsEmptyFolder("/empty")
	require.NoError(t, err)
	assert.True(t, empty, "Folder without entries should be empty")

	empty, err = h.IsEmptyFolder("/data")
	require.NoError(t, err)
	assert.False(t, empty, "Folder with entries should not be empty")
}

// TestMetadata_Success tests metadata collection on an in-memory filesystem.
func TestMetadata_Success(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)

	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, h.Chtimes("/data/a.txt", mtime, mtime))

	metadata, err := h.Metadata("/data/a.txt")
	require.NoError(t, err, "Metadata() should not fail")

	assert.Equal(t, os.FileMode(0o600), metadata.Perms, "Permissions should be collected")
	assert.Equal(t, int64(2), metadata.Size, "Size should be collected")
	assert.True(t, metadata.ModifiedAt.Equal(mtime), "Modification time should be collected")
	assert.False(t, metadata.IsDir, "File should not be a directory")
	assert.False(t, metadata.IsSymlink, "File should not be a symlink")
}

// TestMetadata_Fail tests metadata collection of a missing path.
func TestMetadata_Fail(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)

	_, err := h.Metadata("/data/missing")
	require.ErrorIs(t, err, ErrNoMetadata, "Metadata() should fail with ErrNoMetadata")
}

// TestReadlink_Fail tests that link operations fail on filesystems without links.
func TestReadlink_Fail(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)

	_, err := h.Readlink("/data/a.txt")
	require.ErrorIs(t, err, ErrLinksUnsupported, "Readlink() should fail with ErrLinksUnsupported")

	err = h.Symlink("/data/a.txt", "/data/link")
	require.ErrorIs(t, err, ErrLinksUnsupported, "Symlink() should fail with ErrLinksUnsupported")
}

// TestIsInUse_NilChecker tests that no path is in use without a checker.
func TestIsInUse_NilChecker(t *testing.T) {
	t.Parallel()

	h := newMemHandler(t)
	assert.False(t, h.IsInUse("/data/a.txt"), "No path should be in use without a checker")
}
