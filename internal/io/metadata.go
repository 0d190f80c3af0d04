package io

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/desertwitch/gomv/internal/filesystem"
	"golang.org/x/sys/unix"
)

// ensureMetadata carries permissions, ownership and timestamps of a copied
// source over to its destination. Ownership is best effort, as only a
// privileged user may hand files to others.
func (i *Handler) ensureMetadata(path string, metadata *filesystem.Metadata) error {
	if metadata.HasOwner {
		if err := i.fsHandler.Chown(path, metadata.UID, metadata.GID); err != nil {
			if !errors.Is(err, unix.EPERM) {
				return fmt.Errorf("(io-meta) failed to set ownership on %s: %w", path, err)
			}
			slog.Warn("Warning (io): ownership not preserved", "path", path, "err", err)
		}
	}

	if err := i.fsHandler.Chmod(path, metadata.Perms); err != nil {
		return fmt.Errorf("(io-meta) failed to set permissions on %s: %w", path, err)
	}

	if err := i.fsHandler.Chtimes(path, metadata.AccessedAt, metadata.ModifiedAt); err != nil {
		return fmt.Errorf("(io-meta) failed to set timestamps on %s: %w", path, err)
	}

	return nil
}
