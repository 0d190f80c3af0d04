// Package filesystem implements the filesystem collaborator used for walking,
// validating and executing moves. It wraps an [afero.Fs], so the real operating
// system filesystem and in-memory filesystems can be used interchangeably.
package filesystem

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// inUseProvider defines methods needed to check if a path is in use by another
// process of the operating system.
type inUseProvider interface {
	IsInUse(path string) bool
}

// Handler is the principal implementation for the filesystem services.
type Handler struct {
	fs           afero.Fs
	inUseHandler inUseProvider
}

// NewHandler returns a pointer to a new filesystem [Handler] operating on the
// given [afero.Fs]. The inUseHandler may be nil, in which case no path is ever
// reported as in use.
func NewHandler(fs afero.Fs, inUseHandler inUseProvider) *Handler {
	return &Handler{
		fs:           fs,
		inUseHandler: inUseHandler,
	}
}

// NewOsHandler returns a [Handler] operating on the operating system's
// filesystem.
func NewOsHandler(inUseHandler inUseProvider) *Handler {
	return NewHandler(afero.NewOsFs(), inUseHandler)
}

// Fs returns the wrapped [afero.Fs].
func (f *Handler) Fs() afero.Fs {
	return f.fs
}

// Stat returns the [os.FileInfo] of a path, following symbolic links.
func (f *Handler) Stat(name string) (os.FileInfo, error) {
	return f.fs.Stat(name) //nolint:wrapcheck
}

// Lstat returns the [os.FileInfo] of a path without following a final
// symbolic link, where the underlying filesystem supports it.
func (f *Handler) Lstat(name string) (os.FileInfo, error) {
	if lstater, ok := f.fs.(afero.Lstater); ok {
		fi, _, err := lstater.LstatIfPossible(name)

		return fi, err //nolint:wrapcheck
	}

	return f.fs.Stat(name) //nolint:wrapcheck
}

// ReadDir returns the entries of a directory, sorted byte-wise by name.
func (f *Handler) ReadDir(name string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(f.fs, name)
	if err != nil {
		return nil, fmt.Errorf("(fs-readdir) %w", err)
	}

	slices.SortFunc(entries, func(a, b os.FileInfo) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return entries, nil
}

// Readlink returns the target of a symbolic link.
func (f *Handler) Readlink(name string) (string, error) {
	reader, ok := f.fs.(afero.LinkReader)
	if !ok {
		return "", fmt.Errorf("(fs-readlink) %w", ErrLinksUnsupported)
	}

	target, err := reader.ReadlinkIfPossible(name)
	if err != nil {
		return "", fmt.Errorf("(fs-readlink) %w", err)
	}

	return target, nil
}

// Symlink creates newname as a symbolic link to oldname.
func (f *Handler) Symlink(oldname, newname string) error {
	linker, ok := f.fs.(afero.Linker)
	if !ok {
		return fmt.Errorf("(fs-symlink) %w", ErrLinksUnsupported)
	}

	if err := linker.SymlinkIfPossible(oldname, newname); err != nil {
		return fmt.Errorf("(fs-symlink) %w", err)
	}

	return nil
}

// Rename atomically renames oldname to newname on the same device.
func (f *Handler) Rename(oldname, newname string) error {
	return f.fs.Rename(oldname, newname) //nolint:wrapcheck
}

// Remove removes a file or an empty directory.
func (f *Handler) Remove(name string) error {
	return f.fs.Remove(name) //nolint:wrapcheck
}

// RemoveAll removes a path and any children it contains.
func (f *Handler) RemoveAll(path string) error {
	return f.fs.RemoveAll(path) //nolint:wrapcheck
}

// Mkdir creates a single directory.
func (f *Handler) Mkdir(name string, perm os.FileMode) error {
	return f.fs.Mkdir(name, perm) //nolint:wrapcheck
}

// MkdirAll creates a directory along with any missing parents.
func (f *Handler) MkdirAll(path string, perm os.FileMode) error {
	return f.fs.MkdirAll(path, perm) //nolint:wrapcheck
}

// Open opens a file for reading.
func (f *Handler) Open(name string) (afero.File, error) {
	return f.fs.Open(name) //nolint:wrapcheck
}

// OpenFile opens a file with the given flags and permissions.
func (f *Handler) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return f.fs.OpenFile(name, flag, perm) //nolint:wrapcheck
}

// Chmod changes the permissions of a path.
func (f *Handler) Chmod(name string, mode os.FileMode) error {
	return f.fs.Chmod(name, mode) //nolint:wrapcheck
}

// Chown changes the ownership of a path.
func (f *Handler) Chown(name string, uid, gid int) error {
	return f.fs.Chown(name, uid, gid) //nolint:wrapcheck
}

// Chtimes changes the access and modification times of a path.
func (f *Handler) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return f.fs.Chtimes(name, atime, mtime) //nolint:wrapcheck
}
