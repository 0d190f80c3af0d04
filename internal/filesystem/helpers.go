package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
)

// IsInUse checks if a path is in use by another process of the operating
// system. For this it wraps the function of the given [inUseProvider].
func (f *Handler) IsInUse(path string) bool {
	if f.inUseHandler == nil {
		return false
	}

	return f.inUseHandler.IsInUse(path)
}

// Exists is a helper function checking if a path exists. A symbolic link
// counts as existing even when its target does not.
func (f *Handler) Exists(path string) (bool, error) {
	if _, err := f.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("(fs-exists) %w", err)
	}

	return true, nil
}

// IsDir is a helper function checking if a path exists and is a directory.
func (f *Handler) IsDir(path string) (bool, error) {
	fi, err := f.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("(fs-isdir) %w", err)
	}

	return fi.IsDir(), nil
}

// IsEmptyFolder is a helper function checking if a path is an empty folder.
func (f *Handler) IsEmptyFolder(path string) (bool, error) {
	entries, err := f.ReadDir(path)
	if err != nil {
		return false, fmt.Errorf("(fs-isempty) %w", err)
	}

	return len(entries) == 0, nil
}
